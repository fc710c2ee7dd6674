package resumes

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/resume/render"
)

const maxPhotoSize = 5 << 20 // 5MB

// requestPayload is the wire shape shared by the HTML form and the JSON API.
type requestPayload struct {
	Name       string `json:"name" form:"name"`
	Contact    string `json:"contact" form:"contact"`
	Objective  string `json:"objective" form:"objective"`
	Education  string `json:"education" form:"education"`
	Experience string `json:"experience" form:"experience"`
	Skills     string `json:"skills" form:"skills"`
	Awards     string `json:"awards" form:"awards"`
	Hobbies    string `json:"hobbies" form:"hobbies"`
	Volunteer  string `json:"volunteer" form:"volunteer"`
	Projects   string `json:"projects" form:"projects"`
	JobRole    string `json:"jobRole" form:"job_role"`
	Template   string `json:"template" form:"template"`
	// Photo carries base64 image bytes on the JSON API.
	Photo []byte `json:"photo,omitempty" form:"-"`
}

// resolveRequest turns a bound payload into a request. Missing required
// fields take precedence over template and photo problems, including a photo
// rejected while binding.
func resolveRequest(p requestPayload, bindErr error) (ResumeRequest, error) {
	if bindErr != nil && !isFieldError(bindErr) {
		return ResumeRequest{}, bindErr
	}
	req := ResumeRequest{
		Name:       p.Name,
		Contact:    p.Contact,
		Objective:  p.Objective,
		Education:  p.Education,
		Experience: p.Experience,
		Skills:     p.Skills,
		Awards:     p.Awards,
		Hobbies:    p.Hobbies,
		Volunteer:  p.Volunteer,
		Projects:   p.Projects,
		JobRole:    p.JobRole,
	}
	if err := CheckRequired(req); err != nil {
		return ResumeRequest{}, err
	}
	if bindErr != nil {
		return ResumeRequest{}, bindErr
	}

	tpl, err := ParseTemplate(p.Template)
	if err != nil {
		return ResumeRequest{}, &Error{Kind: KindValidation, Op: "bind", Field: "template", Err: err}
	}
	photo, err := decodePhoto(p.Photo)
	if err != nil {
		return ResumeRequest{}, err
	}
	req.Template = tpl
	req.Photo = photo
	return req, nil
}

func isFieldError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Field != ""
}

// bindPayload reads a JSON body or a (multipart) form, including the optional
// photo upload.
func bindPayload(c *gin.Context) (requestPayload, error) {
	var p requestPayload
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		if err := c.ShouldBindJSON(&p); err != nil {
			return p, &Error{Kind: KindValidation, Op: "bind", Err: errors.New("invalid request body")}
		}
		return p, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize+1<<20)
	if err := c.ShouldBind(&p); err != nil {
		return p, &Error{Kind: KindValidation, Op: "bind", Err: errors.New("invalid form body")}
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return p, nil
		}
		return p, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	data, err := readPhoto(fileHeader)
	if err != nil {
		return p, err
	}
	p.Photo = data
	return p, nil
}

func readPhoto(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > maxPhotoSize {
		return nil, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil || len(data) > maxPhotoSize {
		return nil, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	return data, nil
}

func decodePhoto(data []byte) (*render.Photo, error) {
	if len(data) > maxPhotoSize {
		return nil, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	photo, err := render.NewPhoto(data)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: "bind", Field: "photo", Err: ErrInvalidPhoto}
	}
	return photo, nil
}
