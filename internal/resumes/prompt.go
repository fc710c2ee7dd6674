package resumes

import (
	_ "embed"
	"strings"
)

//go:embed prompt.txt
var promptTemplate string

// BuildPrompt substitutes the request fields into the fixed prompt. Values are
// passed through unchanged.
func BuildPrompt(req ResumeRequest) string {
	tpl := req.Template
	if tpl == "" {
		tpl = TemplateMinimalist
	}
	replacer := strings.NewReplacer(
		"{{NAME}}", req.Name,
		"{{CONTACT}}", req.Contact,
		"{{OBJECTIVE}}", req.Objective,
		"{{EDUCATION}}", req.Education,
		"{{EXPERIENCE}}", req.Experience,
		"{{SKILLS}}", req.Skills,
		"{{AWARDS}}", req.Awards,
		"{{HOBBIES}}", req.Hobbies,
		"{{VOLUNTEER}}", req.Volunteer,
		"{{PROJECTS}}", req.Projects,
		"{{JOB_ROLE}}", req.JobRole,
		"{{TEMPLATE}}", string(tpl),
	)
	return replacer.Replace(promptTemplate)
}
