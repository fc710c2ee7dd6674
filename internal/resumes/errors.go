package resumes

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates an unknown generation or missing artifact.
	ErrNotFound = errors.New("not found")

	// ErrMissingFields indicates one or more required fields are empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidTemplate indicates an unknown template label.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidPhoto indicates an upload that is not a jpeg/png image or is too large.
	ErrInvalidPhoto = errors.New("invalid photo")
)

// WarningMessage is shown when required fields are missing.
const WarningMessage = "Please fill in all the fields before generating the resume."

// Kind classifies a generation failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindUpstream      Kind = "upstream"
	KindSerialization Kind = "serialization"
)

// Error is the failure type returned by Service.Generate.
type Error struct {
	Kind    Kind
	Op      string
	Field   string
	Format  Format
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(string(e.Kind))
	}
	if len(e.Missing) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Missing, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// DisplayMessage renders err the way the result page shows it.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindValidation && errors.Is(e.Err, ErrMissingFields) {
			return WarningMessage
		}
		if e.Err != nil {
			return "Error: " + e.Err.Error()
		}
	}
	return "Error: " + err.Error()
}
