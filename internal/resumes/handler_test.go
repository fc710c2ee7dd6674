package resumes

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, client *countingClient) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, client)
	h := NewHandler(svc)

	r := gin.New()
	LoadTemplates(r)
	h.RegisterPages(r)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func validForm() url.Values {
	return url.Values{
		"name":       {"Jane Doe"},
		"contact":    {"jane@example.com"},
		"objective":  {"Build reliable systems"},
		"education":  {"BSc Computer Science"},
		"experience": {"Acme Corp, Engineer"},
		"skills":     {"Go, SQL"},
		"template":   {"Minimalist"},
		"job_role":   {"Software Engineer"},
	}
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIndexRendersForm(t *testing.T) {
	router, _ := newTestRouter(t, &countingClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"Generate Resume", "Select Resume Template", "Professional", "Upload Profile Picture (Optional)", footerText} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestSubmitMissingFieldsShowsWarning(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	form := validForm()
	form.Set("skills", "")
	resp := postForm(router, form)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, WarningMessage) {
		t.Fatalf("expected warning, got %s", body)
	}
	if strings.Contains(body, "Download Your AI-Generated Resume") {
		t.Fatalf("expected no download links")
	}
	if !strings.Contains(body, `value="Jane Doe"`) {
		t.Fatalf("expected submitted values echoed back")
	}
	if client.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", client.Calls())
	}
}

func TestSubmitSuccessShowsBothDownloads(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	resp := postForm(router, validForm())

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	for _, want := range []string{
		"AI-Generated Resume",
		"Download Your AI-Generated Resume (PDF)",
		"Download Your AI-Generated Resume (Word)",
		"Acme Corp, Engineer",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if client.Calls() != 1 {
		t.Fatalf("expected one model call, got %d", client.Calls())
	}
	if !strings.Contains(client.prompts[0], "Template: Minimalist") {
		t.Fatalf("prompt missing template")
	}

	link := regexp.MustCompile(`href="(/downloads/[^"]+/pdf)"`).FindStringSubmatch(body)
	if link == nil {
		t.Fatalf("expected pdf download link")
	}
	dl := httptest.NewRecorder()
	router.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, link[1], nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("expected download status 200, got %d", dl.Code)
	}
	if ct := dl.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := dl.Header().Get("Content-Disposition"); cd != `attachment; filename="AI_Resume.pdf"` {
		t.Fatalf("unexpected content disposition: %s", cd)
	}
	if !bytes.HasPrefix(dl.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf body")
	}
}

func TestSubmitUpstreamFailureShowsError(t *testing.T) {
	client := &countingClient{err: errors.New("API key not valid")}
	router, _ := newTestRouter(t, client)

	resp := postForm(router, validForm())

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Error: API key not valid") {
		t.Fatalf("expected error text, got %s", body)
	}
	if strings.Contains(body, "Download Your AI-Generated Resume") {
		t.Fatalf("expected no download links")
	}
}

func TestSubmitMultipartWithPhoto(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	body, contentType := multipartBody(t, validForm(), "photo.png", testPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "Download Your AI-Generated Resume (PDF)") {
		t.Fatalf("expected pdf download")
	}
}

func TestSubmitRejectsNonImagePhoto(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	body, contentType := multipartBody(t, validForm(), "photo.png", []byte("GIF89a not allowed"))
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", client.Calls())
	}
}

func TestAPICreateAndDownloadDocx(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	payload := map[string]any{
		"name":       "Jane Doe",
		"contact":    "jane@example.com",
		"objective":  "Build reliable systems",
		"education":  "BSc",
		"experience": "Acme",
		"skills":     "Go",
		"template":   "Professional",
	}
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out generateResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Template != TemplateProfessional || out.Text != sampleText {
		t.Fatalf("unexpected response %+v", out)
	}
	if len(out.Downloads) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(out.Downloads))
	}
	docx := out.Downloads[1]
	if docx.Label != "Download Your AI-Generated Resume (Word)" || docx.FileName != "AI_Resume.docx" {
		t.Fatalf("unexpected docx download %+v", docx)
	}

	dl := httptest.NewRecorder()
	router.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, docx.URL, nil))
	if dl.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", dl.Code)
	}
	if ct := dl.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := dl.Header().Get("Content-Disposition"); cd != `attachment; filename="AI_Resume.docx"` {
		t.Fatalf("unexpected content disposition: %s", cd)
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+out.ID, nil))
	if get.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", get.Code)
	}
}

func TestAPICreateValidationError(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", strings.NewReader(`{"name":"Jane Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	var out struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Missing []string `json:"missing"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error.Code != "validation_error" || out.Error.Message != WarningMessage {
		t.Fatalf("unexpected error %+v", out.Error)
	}
	if len(out.Error.Details.Missing) != 5 {
		t.Fatalf("expected 5 missing fields, got %v", out.Error.Details.Missing)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected zero model calls")
	}
}

func TestAPICreateInvalidTemplate(t *testing.T) {
	router, _ := newTestRouter(t, &countingClient{text: sampleText})

	raw, _ := json.Marshal(map[string]string{
		"name":       "Jane",
		"contact":    "jane@example.com",
		"objective":  "Ship",
		"education":  "BSc",
		"experience": "Acme",
		"skills":     "Go",
		"template":   "Baroque",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"field":"template"`) {
		t.Fatalf("expected template field detail, got %s", resp.Body.String())
	}
}

func TestAPICreateMissingFieldsWinOverInvalidTemplate(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	raw, _ := json.Marshal(map[string]string{"name": "Jane", "template": "Baroque"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, WarningMessage) || !strings.Contains(body, `"missing"`) {
		t.Fatalf("expected missing-fields warning, got %s", body)
	}
	if strings.Contains(body, `"field":"template"`) {
		t.Fatalf("expected template problem to be masked, got %s", body)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", client.Calls())
	}
}

func TestSubmitMissingFieldsWinOverBadPhotoAndTemplate(t *testing.T) {
	client := &countingClient{text: sampleText}
	router, _ := newTestRouter(t, client)

	form := validForm()
	form.Set("name", "")
	form.Set("template", "Baroque")
	body, contentType := multipartBody(t, form, "photo.png", []byte("GIF89a not allowed"))
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), WarningMessage) {
		t.Fatalf("expected missing-fields warning, got %s", resp.Body.String())
	}
	if client.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", client.Calls())
	}
}

func TestAPICreateUpstreamError(t *testing.T) {
	router, _ := newTestRouter(t, &countingClient{err: errors.New("deadline exceeded")})

	raw, _ := json.Marshal(map[string]string{
		"name": "Jane", "contact": "c", "objective": "o", "education": "e", "experience": "x", "skills": "s",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "upstream_error") || !strings.Contains(resp.Body.String(), "Error: deadline exceeded") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestDownloadUnknownGeneration(t *testing.T) {
	router, _ := newTestRouter(t, &countingClient{})

	for _, path := range []string{"/downloads/missing/pdf", "/downloads/missing/txt", "/api/v1/resumes/missing"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", path, resp.Code)
		}
		if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("%s: expected json content type, got %s", path, ct)
		}
	}
}

func multipartBody(t *testing.T, values url.Values, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, vals := range values {
		for _, v := range vals {
			if err := w.WriteField(key, v); err != nil {
				t.Fatalf("WriteField: %v", err)
			}
		}
	}
	part, err := w.CreateFormFile("photo", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}
