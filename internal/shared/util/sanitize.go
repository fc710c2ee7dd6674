package util

import (
	"errors"
	"strings"
	"unicode"
)

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators, drops control characters and
// quotes, and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r == '"' || unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errInvalidFileName
	}
	return s, nil
}

// AttachmentDisposition builds a Content-Disposition header value. Names
// that fail sanitizing fall back to "download".
func AttachmentDisposition(fileName string) string {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		name = "download"
	}
	return `attachment; filename="` + name + `"`
}
