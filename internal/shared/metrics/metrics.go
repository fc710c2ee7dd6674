package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Stage names one timed step of a generation.
type Stage string

const (
	StageLLM     Stage = "llm"
	StageRender  Stage = "render"
	StageStore   Stage = "store"
	StageRecord  Stage = "record"
	StagePublish Stage = "publish"
)

// Outcome values for generations and artifacts.
const (
	OutcomeCompleted   = "completed"
	OutcomeRejected    = "rejected"
	OutcomeUpstream    = "upstream_error"
	OutcomeRateLimited = "rate_limited"
	OutcomeStored      = "stored"
	OutcomeFailed      = "failed"
)

var (
	inFlight atomic.Int64

	generations = newCounterVec("resume_generations_total", "Generation requests by outcome", "outcome")
	artifacts   = newCounterVec("resume_artifacts_total", "Produced documents by format and outcome", "format", "outcome")
	stageTiming = newHistogramVec("resume_stage_duration_ms", "Duration of each generation stage in milliseconds", "stage",
		[]float64{5, 25, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncGeneration counts one generation request by outcome.
func IncGeneration(outcome string) {
	generations.Inc(outcome)
}

// IncArtifact counts one document. A stored outcome is only counted once the
// download is actually offered.
func IncArtifact(format, outcome string) {
	artifacts.Inc(format, outcome)
}

// ObserveStage records how long a stage took.
func ObserveStage(stage Stage, d time.Duration) {
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	stageTiming.Observe(string(stage), ms)
}

// TrackInFlight marks a model-bound generation as running until the
// returned func is called.
func TrackInFlight() func() {
	inFlight.Add(1)
	var once sync.Once
	return func() { once.Do(func() { inFlight.Add(-1) }) }
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	generations.write(&buf)
	artifacts.write(&buf)
	fmt.Fprintf(&buf, "# HELP resume_generations_in_flight Generations waiting on the model or exporters\n")
	fmt.Fprintf(&buf, "# TYPE resume_generations_in_flight gauge\n")
	fmt.Fprintf(&buf, "resume_generations_in_flight %d\n", inFlight.Load())
	stageTiming.write(&buf)
	return buf.String()
}

// labelSep joins label values into a map key. It cannot occur in valid UTF-8.
const labelSep = "\xff"

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec(name, help string, labels ...string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: map[string]uint64{}}
}

func (v *counterVec) Inc(labelValues ...string) {
	key := strings.Join(labelValues, labelSep)
	v.mu.Lock()
	v.values[key]++
	v.mu.Unlock()
}

func (v *counterVec) write(buf *bytes.Buffer) {
	v.mu.Lock()
	keys := sortedKeys(v.values)
	values := make([]uint64, len(keys))
	for i, k := range keys {
		values[i] = v.values[k]
	}
	v.mu.Unlock()

	fmt.Fprintf(buf, "# HELP %s %s\n", v.name, v.help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", v.name)
	for i, k := range keys {
		fmt.Fprintf(buf, "%s{%s} %d\n", v.name, formatLabels(v.labels, strings.Split(k, labelSep)), values[i])
	}
}

type histogramVec struct {
	name    string
	help    string
	label   string
	buckets []float64

	mu     sync.Mutex
	series map[string]*histogram
}

func newHistogramVec(name, help, label string, buckets []float64) *histogramVec {
	return &histogramVec{name: name, help: help, label: label, buckets: buckets, series: map[string]*histogram{}}
}

func (v *histogramVec) Observe(labelValue string, value float64) {
	v.mu.Lock()
	h, ok := v.series[labelValue]
	if !ok {
		h = newHistogram(v.buckets)
		v.series[labelValue] = h
	}
	v.mu.Unlock()
	h.Observe(value)
}

func (v *histogramVec) write(buf *bytes.Buffer) {
	v.mu.Lock()
	keys := sortedKeys(v.series)
	snaps := make([]histogramSnapshot, len(keys))
	for i, k := range keys {
		snaps[i] = v.series[k].Snapshot()
	}
	v.mu.Unlock()

	fmt.Fprintf(buf, "# HELP %s %s\n", v.name, v.help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", v.name)
	for i, k := range keys {
		base := formatLabels([]string{v.label}, []string{k})
		snap := snaps[i]
		var cumulative uint64
		for j, bound := range snap.buckets {
			cumulative += snap.counts[j]
			fmt.Fprintf(buf, "%s_bucket{%s,le=\"%s\"} %d\n", v.name, base, formatFloat(bound), cumulative)
		}
		fmt.Fprintf(buf, "%s_bucket{%s,le=\"+Inf\"} %d\n", v.name, base, snap.count)
		fmt.Fprintf(buf, "%s_sum{%s} %s\n", v.name, base, formatFloat(snap.sum))
		fmt.Fprintf(buf, "%s_count{%s} %d\n", v.name, base, snap.count)
	}
}

// histogram keeps per-bucket counts; cumulation happens on render.
type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	idx := sort.SearchFloat64s(h.buckets, value)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if idx < len(h.counts) {
		h.counts[idx]++
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func formatLabels(names, values []string) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, name+`="`+labelEscaper.Replace(val)+`"`)
	}
	return strings.Join(parts, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
