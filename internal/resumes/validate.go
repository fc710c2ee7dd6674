package resumes

// Validate checks presence of the required fields and the template label.
// Content is never inspected beyond that.
func Validate(req ResumeRequest) error {
	if err := CheckRequired(req); err != nil {
		return err
	}
	if req.Template != "" && !req.Template.Valid() {
		return &Error{Kind: KindValidation, Op: "validate", Field: "template", Err: ErrInvalidTemplate}
	}
	return nil
}

// CheckRequired reports the required fields that are empty strings.
// Whitespace counts as content.
func CheckRequired(req ResumeRequest) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"contact", req.Contact},
		{"objective", req.Objective},
		{"education", req.Education},
		{"experience", req.Experience},
		{"skills", req.Skills},
	}

	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &Error{Kind: KindValidation, Op: "validate", Missing: missing, Err: ErrMissingFields}
	}
	return nil
}
