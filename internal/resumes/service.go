package resumes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-builder/internal/events"
	"resume-builder/internal/llm"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/tracing"
	"resume-builder/resume/render"
)

func tracer() trace.Tracer { return tracing.Tracer("resume-builder/resumes") }

// Exporter turns generated text into one document format.
type Exporter struct {
	Format Format
	Render func(req ResumeRequest, text string) ([]byte, error)
}

// DefaultExporters returns the PDF and DOCX exporters in display order.
func DefaultExporters() []Exporter {
	return []Exporter{
		{
			Format: FormatPDF,
			Render: func(req ResumeRequest, text string) ([]byte, error) {
				return render.RenderPDF(text, req.Photo)
			},
		},
		{
			Format: FormatDocx,
			Render: func(req ResumeRequest, text string) ([]byte, error) {
				return render.RenderDocx(req.Name, text)
			},
		},
	}
}

// Result is the outcome of one successful generation. Errors lists exporters
// that failed; their artifacts are absent from Artifacts.
type Result struct {
	ID        string
	Text      string
	Template  Template
	Artifacts []Artifact
	Errors    []*Error
}

// Service runs the collect, generate and export pipeline.
type Service struct {
	LLM       llm.Client
	Store     object.ObjectStore
	Repo      Repo
	Events    events.Publisher
	Exporters []Exporter
	Now       func() time.Time
	NewID     func() string
}

// Generate validates req, issues exactly one model call and exports the
// returned text. Without a Store the artifacts are returned in memory only.
func (s *Service) Generate(ctx context.Context, req ResumeRequest) (Result, error) {
	if req.Template == "" {
		req.Template = TemplateMinimalist
	}
	ctx, span := tracer().Start(ctx, "resumes.Generate", trace.WithAttributes(
		attribute.String("resume.template", string(req.Template)),
		attribute.Bool("resume.photo", req.Photo != nil),
	))
	defer span.End()

	if err := Validate(req); err != nil {
		metrics.IncGeneration(metrics.OutcomeRejected)
		tracing.RecordError(span, err, string(KindValidation))
		return Result{}, err
	}
	if s.LLM == nil {
		err := &Error{Kind: KindUpstream, Op: "generate", Err: llm.ErrNotConfigured}
		tracing.RecordError(span, err, string(KindUpstream))
		return Result{}, err
	}

	done := metrics.TrackInFlight()
	defer done()
	start := s.now()
	text, err := s.callModel(ctx, BuildPrompt(req))
	metrics.ObserveStage(metrics.StageLLM, s.now().Sub(start))
	if err != nil {
		metrics.IncGeneration(metrics.OutcomeUpstream)
		telemetry.Error("resume.generate_failed", map[string]any{
			"template":    string(req.Template),
			"duration_ms": float64(s.now().Sub(start).Microseconds()) / 1000.0,
			"trace_id":    tracing.TraceID(ctx),
			"error":       err.Error(),
		})
		gerr := &Error{Kind: KindUpstream, Op: "generate", Err: err}
		tracing.RecordError(span, gerr, string(KindUpstream))
		return Result{}, gerr
	}

	result := Result{
		ID:       s.newID(),
		Text:     text,
		Template: req.Template,
	}
	span.SetAttributes(attribute.String("resume.generation_id", result.ID))

	for _, exp := range s.exporters() {
		data, err := s.export(ctx, exp, req, text)
		if err != nil {
			result.Errors = append(result.Errors, &Error{Kind: KindSerialization, Op: "export " + string(exp.Format), Format: exp.Format, Err: err})
			continue
		}
		result.Artifacts = append(result.Artifacts, Artifact{Format: exp.Format, Bytes: data, Size: int64(len(data))})
	}

	if s.Store != nil {
		s.persist(ctx, &result)
	}

	metrics.IncGeneration(metrics.OutcomeCompleted)
	for _, art := range result.Artifacts {
		metrics.IncArtifact(string(art.Format), metrics.OutcomeStored)
	}
	for _, e := range result.Errors {
		metrics.IncArtifact(string(e.Format), metrics.OutcomeFailed)
	}
	span.SetAttributes(
		attribute.Int("resume.artifacts", len(result.Artifacts)),
		attribute.Int("resume.export_errors", len(result.Errors)),
	)
	telemetry.Info("resume.generated", map[string]any{
		"generation_id": result.ID,
		"template":      string(result.Template),
		"artifacts":     len(result.Artifacts),
		"export_errors": len(result.Errors),
		"duration_ms":   float64(s.now().Sub(start).Microseconds()) / 1000.0,
	})
	return result, nil
}

func (s *Service) callModel(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer().Start(ctx, "llm.Generate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("llm.prompt_chars", len(prompt)))

	text, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		tracing.RecordError(span, err, string(KindUpstream))
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(text)))
	return text, nil
}

func (s *Service) export(ctx context.Context, exp Exporter, req ResumeRequest, text string) ([]byte, error) {
	_, span := tracer().Start(ctx, "resumes.export", trace.WithAttributes(attribute.String("resume.format", string(exp.Format))))
	defer span.End()

	started := s.now()
	data, err := exp.Render(req, text)
	metrics.ObserveStage(metrics.StageRender, s.now().Sub(started))
	if err != nil {
		tracing.RecordError(span, err, string(KindSerialization))
		return nil, err
	}
	span.SetAttributes(attribute.Int("resume.bytes", len(data)))
	return data, nil
}

func (s *Service) persist(ctx context.Context, result *Result) {
	ctx, span := tracer().Start(ctx, "resumes.persist")
	defer span.End()

	gen := Generation{
		ID:        result.ID,
		Template:  result.Template,
		CreatedAt: s.now().UTC(),
	}

	saved := result.Artifacts[:0]
	for _, art := range result.Artifacts {
		started := s.now()
		key, err := object.GenerationKey(result.ID, art.FileName())
		if err == nil {
			art.Size, err = s.Store.SaveWithKey(ctx, key, art.MimeType(), bytes.NewReader(art.Bytes))
		}
		metrics.ObserveStage(metrics.StageStore, s.now().Sub(started))
		if err != nil {
			result.Errors = append(result.Errors, &Error{Kind: KindSerialization, Op: "store " + string(art.Format), Format: art.Format, Err: err})
			continue
		}
		art.StorageKey = key
		switch art.Format {
		case FormatPDF:
			gen.PDFKey, gen.PDFSize = key, art.Size
		case FormatDocx:
			gen.DocxKey, gen.DocxSize = key, art.Size
		}
		saved = append(saved, art)
	}
	result.Artifacts = saved

	if s.Repo == nil || len(saved) == 0 {
		return
	}
	started := s.now()
	err := s.Repo.Create(ctx, gen)
	metrics.ObserveStage(metrics.StageRecord, s.now().Sub(started))
	if err != nil {
		tracing.RecordError(span, err, string(KindSerialization))
		for _, art := range saved {
			result.Errors = append(result.Errors, &Error{Kind: KindSerialization, Op: "record " + string(art.Format), Format: art.Format, Err: err})
		}
		result.Artifacts = nil
		return
	}
	s.announce(ctx, gen)
}

// announce publishes a generated event. Delivery failures never affect
// the downloads already offered.
func (s *Service) announce(ctx context.Context, gen Generation) {
	if s.Events == nil {
		return
	}
	formats := make([]string, 0, 2)
	for _, f := range gen.Formats() {
		formats = append(formats, string(f))
	}
	started := s.now()
	err := s.Events.Publish(ctx, events.Event{
		Type:         events.TypeGenerated,
		GenerationID: gen.ID,
		Template:     string(gen.Template),
		Formats:      formats,
		CreatedAt:    gen.CreatedAt,
	})
	metrics.ObserveStage(metrics.StagePublish, s.now().Sub(started))
	if err != nil {
		telemetry.Warn("resume.event_publish_failed", map[string]any{
			"generation_id": gen.ID,
			"error":         err.Error(),
		})
	}
}

// Get returns the generation record for id.
func (s *Service) Get(ctx context.Context, id string) (Generation, error) {
	if id == "" {
		return Generation{}, ErrNotFound
	}
	if s.Repo == nil {
		return Generation{}, errors.New("missing dependencies")
	}
	return s.Repo.GetByID(ctx, id)
}

// Open returns a reader for one stored artifact. The caller closes it.
func (s *Service) Open(ctx context.Context, id string, format Format) (io.ReadCloser, error) {
	gen, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key, ok := gen.Key(format)
	if !ok {
		return nil, ErrNotFound
	}
	if s.Store == nil {
		return nil, errors.New("missing dependencies")
	}
	reader, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (s *Service) exporters() []Exporter {
	if len(s.Exporters) > 0 {
		return s.Exporters
	}
	return DefaultExporters()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
