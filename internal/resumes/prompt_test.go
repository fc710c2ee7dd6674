package resumes

import (
	"strings"
	"testing"
)

func TestBuildPromptContainsFields(t *testing.T) {
	prompt := BuildPrompt(validRequest())

	for _, want := range []string{
		"Create a professional resume using the following details:",
		"Name: Jane Doe",
		"Contact Info: jane@example.com",
		"Template: Minimalist",
		"Format it in a clean, ATS-friendly structure with proper headings.",
		"Adjust the tone and style according to the selected template.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptFieldOrder(t *testing.T) {
	req := validRequest()
	req.Awards = "Dean's List"
	req.Hobbies = "Chess"
	req.Volunteer = "Food bank"
	req.Projects = "resumectl"
	req.JobRole = "Software Engineer"
	req.Template = TemplateCreative
	prompt := BuildPrompt(req)

	labels := []string{
		"Name:", "Contact Info:", "Objective:", "Education:", "Work Experience:", "Skills:",
		"Awards:", "Hobbies:", "Volunteer Experience:", "Projects:", "Job Role:", "Template:",
	}
	last := -1
	for _, label := range labels {
		idx := strings.Index(prompt, "\n"+label)
		if idx < 0 {
			t.Fatalf("prompt missing label %q", label)
		}
		if idx <= last {
			t.Fatalf("label %q out of order", label)
		}
		last = idx
	}
	if !strings.Contains(prompt, "Job Role: Software Engineer\nTemplate: Creative") {
		t.Fatalf("unexpected tail:\n%s", prompt)
	}
}

func TestBuildPromptIsDeterministicAndVerbatim(t *testing.T) {
	req := validRequest()
	req.Skills = "Go {{TEMPLATE}} and  spaced  values\nsecond line"

	first := BuildPrompt(req)
	if first != BuildPrompt(req) {
		t.Fatalf("expected deterministic prompt")
	}
	if !strings.Contains(first, "Skills: Go {{TEMPLATE}} and  spaced  values\nsecond line") {
		t.Fatalf("expected skills passed through unchanged:\n%s", first)
	}
}

func TestBuildPromptDefaultsTemplate(t *testing.T) {
	req := validRequest()
	req.Template = ""
	if !strings.Contains(BuildPrompt(req), "Template: Minimalist") {
		t.Fatalf("expected default template in prompt")
	}
}
