package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resume-builder/internal/resumes"
	"resume-builder/resume/render"
)

// requestInput mirrors the form fields. It can be read from a YAML file and
// overridden per flag.
type requestInput struct {
	Name       string `yaml:"name"`
	Contact    string `yaml:"contact"`
	Objective  string `yaml:"objective"`
	Education  string `yaml:"education"`
	Experience string `yaml:"experience"`
	Skills     string `yaml:"skills"`
	Awards     string `yaml:"awards"`
	Hobbies    string `yaml:"hobbies"`
	Volunteer  string `yaml:"volunteer"`
	Projects   string `yaml:"projects"`
	JobRole    string `yaml:"job_role"`
	Template   string `yaml:"template"`
	Photo      string `yaml:"photo"`
}

type requestFlags struct {
	input  string
	values requestInput
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "YAML file with resume fields; flags override it")
	fs.StringVar(&f.values.Name, "name", "", "full name")
	fs.StringVar(&f.values.Contact, "contact", "", "contact information (email, phone, etc.)")
	fs.StringVar(&f.values.Objective, "objective", "", "career objective")
	fs.StringVar(&f.values.Education, "education", "", "education details (degree, school, year)")
	fs.StringVar(&f.values.Experience, "experience", "", "work experience (company, role, years)")
	fs.StringVar(&f.values.Skills, "skills", "", "skills")
	fs.StringVar(&f.values.Awards, "awards", "", "awards & certifications")
	fs.StringVar(&f.values.Hobbies, "hobbies", "", "hobbies and interests")
	fs.StringVar(&f.values.Volunteer, "volunteer", "", "volunteer experience")
	fs.StringVar(&f.values.Projects, "projects", "", "projects")
	fs.StringVar(&f.values.JobRole, "job-role", "", "target job role")
	fs.StringVar(&f.values.Template, "template", "", "Minimalist, Professional or Creative (default Minimalist)")
	fs.StringVar(&f.values.Photo, "photo", "", "profile picture (jpg or png)")
}

// resolve merges the YAML input with explicitly set flags.
func (f *requestFlags) resolve(cmd *cobra.Command) (requestInput, error) {
	var in requestInput
	if f.input != "" {
		data, err := os.ReadFile(filepath.Clean(f.input))
		if err != nil {
			return in, fmt.Errorf("read input: %w", err)
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse input: %w", err)
		}
	}

	overrides := map[string]*string{
		"name":       &in.Name,
		"contact":    &in.Contact,
		"objective":  &in.Objective,
		"education":  &in.Education,
		"experience": &in.Experience,
		"skills":     &in.Skills,
		"awards":     &in.Awards,
		"hobbies":    &in.Hobbies,
		"volunteer":  &in.Volunteer,
		"projects":   &in.Projects,
		"job-role":   &in.JobRole,
		"template":   &in.Template,
		"photo":      &in.Photo,
	}
	for name, dst := range overrides {
		if cmd.Flags().Changed(name) {
			val, _ := cmd.Flags().GetString(name)
			*dst = val
		}
	}
	return in, nil
}

// toRequest converts the input. A prompt preview accepts partial input; for
// generation the required fields are checked before the template and photo.
func (in requestInput) toRequest(generate bool) (resumes.ResumeRequest, error) {
	req := resumes.ResumeRequest{
		Name:       in.Name,
		Contact:    in.Contact,
		Objective:  in.Objective,
		Education:  in.Education,
		Experience: in.Experience,
		Skills:     in.Skills,
		Awards:     in.Awards,
		Hobbies:    in.Hobbies,
		Volunteer:  in.Volunteer,
		Projects:   in.Projects,
		JobRole:    in.JobRole,
	}
	if generate {
		if err := resumes.CheckRequired(req); err != nil {
			return req, err
		}
	}
	tpl, err := resumes.ParseTemplate(in.Template)
	if err != nil {
		return req, fmt.Errorf("template %q: %w", in.Template, err)
	}
	req.Template = tpl
	if generate && in.Photo != "" {
		data, err := os.ReadFile(filepath.Clean(in.Photo))
		if err != nil {
			return req, fmt.Errorf("read photo: %w", err)
		}
		photo, err := render.NewPhoto(data)
		if err != nil {
			return req, fmt.Errorf("photo %s: %w", in.Photo, err)
		}
		req.Photo = photo
	}
	return req, nil
}
