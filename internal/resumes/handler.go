package resumes

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	footerText         = "Powered by Gemini AI."
	rateLimitedWarning = "Too many resume generations from your address. Please try again in %d seconds."
)

// LoadTemplates installs the HTML page templates on the engine.
func LoadTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the JSON API. Extra handlers run before generation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generate ...gin.HandlerFunc) {
	rg.POST("/resumes", chain(generate, h.create)...)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/:format", h.download)
}

// RegisterPages attaches the form page, its submit action and the download links.
func (h *Handler) RegisterPages(r gin.IRoutes, generate ...gin.HandlerFunc) {
	r.GET("/", h.index)
	r.POST("/generate", chain(generate, h.submit)...)
	r.GET("/downloads/:id/:format", h.download)
}

func chain(before []gin.HandlerFunc, final gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(before)+1)
	out = append(out, before...)
	return append(out, final)
}

type downloadResponse struct {
	Format   Format `json:"format"`
	Label    string `json:"label"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url"`
}

type errorItem struct {
	Kind    Kind   `json:"kind"`
	Format  Format `json:"format,omitempty"`
	Message string `json:"message"`
}

type generateResponse struct {
	ID        string             `json:"id"`
	Text      string             `json:"text"`
	Template  Template           `json:"template"`
	Downloads []downloadResponse `json:"downloads"`
	Errors    []errorItem        `json:"errors"`
}

type generationResponse struct {
	ID        string             `json:"id"`
	Template  Template           `json:"template"`
	CreatedAt time.Time          `json:"createdAt"`
	Downloads []downloadResponse `json:"downloads"`
}

func (h *Handler) create(c *gin.Context) {
	payload, err := bindPayload(c)
	req, err := resolveRequest(payload, err)
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	res, err := h.Svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}
	c.Set("generationId", res.ID)
	c.Set("template", string(res.Template))

	resp := generateResponse{
		ID:        res.ID,
		Text:      res.Text,
		Template:  res.Template,
		Downloads: make([]downloadResponse, 0, len(res.Artifacts)),
		Errors:    make([]errorItem, 0, len(res.Errors)),
	}
	for _, art := range res.Artifacts {
		resp.Downloads = append(resp.Downloads, toDownload(apiDownloadURL(res.ID, art.Format), art.Format))
	}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, errorItem{Kind: e.Kind, Format: e.Format, Message: DisplayMessage(e)})
	}
	respond.Created(c, resp)
}

func (h *Handler) respondGenerateError(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate resume", nil)
		return
	}
	switch e.Kind {
	case KindValidation:
		details := gin.H{}
		if len(e.Missing) > 0 {
			details["missing"] = e.Missing
		}
		if e.Field != "" {
			details["field"] = e.Field
		}
		message := WarningMessage
		if !errors.Is(e, ErrMissingFields) {
			message = e.Err.Error()
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", message, details)
	case KindUpstream:
		respond.Error(c, http.StatusBadGateway, "upstream_error", DisplayMessage(e), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "serialization_error", DisplayMessage(e), nil)
	}
}

func (h *Handler) get(c *gin.Context) {
	gen, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generated resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generated resume", nil)
		}
		return
	}

	resp := generationResponse{
		ID:        gen.ID,
		Template:  gen.Template,
		CreatedAt: gen.CreatedAt,
		Downloads: []downloadResponse{},
	}
	for _, f := range gen.Formats() {
		resp.Downloads = append(resp.Downloads, toDownload(apiDownloadURL(gen.ID, f), f))
	}
	respond.OK(c, resp)
}

func (h *Handler) download(c *gin.Context) {
	format, ok := ParseFormat(c.Param("format"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown download format", nil)
		return
	}
	id := c.Param("id")
	c.Set("generationId", id)

	reader, err := h.Svc.Open(c.Request.Context(), id, format)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generated resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load generated resume", nil)
		}
		return
	}
	defer reader.Close()

	if _, err := respond.Attachment(c, format.FileName(), format.MimeType(), reader); err != nil {
		telemetry.Warn("resumes.download_interrupted", map[string]any{"generation_id": id, "format": string(format), "error": err.Error()})
	}
}

type pageLink struct {
	Label string
	URL   string
}

type pageData struct {
	Form      requestPayload
	Templates []Template
	Selected  Template
	Warning   string
	Error     string
	Text      string
	Downloads []pageLink
	Notices   []string
	Footer    string
}

func newPageData(form requestPayload) pageData {
	selected, err := ParseTemplate(form.Template)
	if err != nil {
		selected = TemplateMinimalist
	}
	return pageData{
		Form:      form,
		Templates: Templates,
		Selected:  selected,
		Footer:    footerText,
	}
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPageData(requestPayload{}))
}

func (h *Handler) submit(c *gin.Context) {
	payload, err := bindPayload(c)
	// Photo bytes are never echoed back into the page.
	form := payload
	form.Photo = nil
	data := newPageData(form)
	req, err := resolveRequest(payload, err)
	if err != nil {
		h.renderPageError(c, data, err)
		return
	}

	res, err := h.Svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.renderPageError(c, data, err)
		return
	}
	c.Set("generationId", res.ID)
	c.Set("template", string(res.Template))

	data.Text = res.Text
	for _, art := range res.Artifacts {
		data.Downloads = append(data.Downloads, pageLink{Label: art.Label(), URL: pageDownloadURL(res.ID, art.Format)})
	}
	for _, e := range res.Errors {
		data.Notices = append(data.Notices, DisplayMessage(e))
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// RateLimitedPage re-renders the form with a warning when the submit route
// is throttled. Submitted values are echoed back.
func (h *Handler) RateLimitedPage(c *gin.Context, retryAfter time.Duration) {
	payload, _ := bindPayload(c)
	payload.Photo = nil
	data := newPageData(payload)
	data.Warning = fmt.Sprintf(rateLimitedWarning, middleware.RetryAfterSeconds(retryAfter))
	c.HTML(http.StatusTooManyRequests, "index.html", data)
}

func (h *Handler) renderPageError(c *gin.Context, data pageData, err error) {
	status := http.StatusInternalServerError
	switch KindOf(err) {
	case KindValidation:
		status = http.StatusBadRequest
		if errors.Is(err, ErrMissingFields) {
			data.Warning = WarningMessage
		} else {
			data.Warning = DisplayMessage(err)
		}
	case KindUpstream:
		status = http.StatusBadGateway
		data.Error = DisplayMessage(err)
	default:
		data.Error = DisplayMessage(err)
	}
	c.HTML(status, "index.html", data)
}

func toDownload(url string, f Format) downloadResponse {
	return downloadResponse{
		Format:   f,
		Label:    f.Label(),
		FileName: f.FileName(),
		MimeType: f.MimeType(),
		URL:      url,
	}
}

func apiDownloadURL(id string, f Format) string {
	return "/api/v1/resumes/" + id + "/" + string(f)
}

func pageDownloadURL(id string, f Format) string {
	return "/downloads/" + id + "/" + string(f)
}
