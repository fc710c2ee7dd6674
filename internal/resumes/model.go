package resumes

import (
	"strings"
	"time"

	"resume-builder/resume/render"
)

// Template is the style label passed through to the model prompt.
type Template string

const (
	TemplateMinimalist   Template = "Minimalist"
	TemplateProfessional Template = "Professional"
	TemplateCreative     Template = "Creative"
)

// Templates lists the selectable templates in display order.
var Templates = []Template{TemplateMinimalist, TemplateProfessional, TemplateCreative}

// ParseTemplate resolves a template label case-insensitively. An empty value
// selects the first template.
func ParseTemplate(raw string) (Template, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TemplateMinimalist, nil
	}
	for _, t := range Templates {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidTemplate
}

// Valid reports whether t is one of the known templates.
func (t Template) Valid() bool {
	for _, known := range Templates {
		if t == known {
			return true
		}
	}
	return false
}

// ResumeRequest is the snapshot of the form at submit time. It is never persisted.
type ResumeRequest struct {
	Name       string
	Contact    string
	Objective  string
	Education  string
	Experience string
	Skills     string
	Awards     string
	Hobbies    string
	Volunteer  string
	Projects   string
	JobRole    string
	Template   Template
	Photo      *render.Photo
}

// Format identifies a downloadable artifact.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

type formatInfo struct {
	fileName string
	mimeType string
	label    string
}

var formats = map[Format]formatInfo{
	FormatPDF: {
		fileName: "AI_Resume.pdf",
		mimeType: "application/pdf",
		label:    "Download Your AI-Generated Resume (PDF)",
	},
	FormatDocx: {
		fileName: "AI_Resume.docx",
		mimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		label:    "Download Your AI-Generated Resume (Word)",
	},
}

// ParseFormat resolves a format from a route parameter.
func ParseFormat(raw string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := formats[f]
	return f, ok
}

func (f Format) FileName() string { return formats[f].fileName }
func (f Format) MimeType() string { return formats[f].mimeType }
func (f Format) Label() string    { return formats[f].label }

// Artifact is one exported document.
type Artifact struct {
	Format     Format
	StorageKey string
	Size       int64
	Bytes      []byte
}

func (a Artifact) FileName() string { return a.Format.FileName() }
func (a Artifact) MimeType() string { return a.Format.MimeType() }
func (a Artifact) Label() string    { return a.Format.Label() }

// Generation records where the artifacts of one request were stored. It holds
// no personal data.
type Generation struct {
	ID        string
	Template  Template
	PDFKey    string
	PDFSize   int64
	DocxKey   string
	DocxSize  int64
	CreatedAt time.Time
}

// Key returns the storage key for the given format, if that artifact exists.
func (g Generation) Key(f Format) (string, bool) {
	switch f {
	case FormatPDF:
		return g.PDFKey, g.PDFKey != ""
	case FormatDocx:
		return g.DocxKey, g.DocxKey != ""
	default:
		return "", false
	}
}

// Formats lists the formats available for download, in display order.
func (g Generation) Formats() []Format {
	var out []Format
	if g.PDFKey != "" {
		out = append(out, FormatPDF)
	}
	if g.DocxKey != "" {
		out = append(out, FormatDocx)
	}
	return out
}
