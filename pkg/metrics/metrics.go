// Package metrics exposes Prometheus collectors for document ingestion and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "folio"

// Recorder holds the collectors registered against a single registry.
// It satisfies the ingest pipeline's recorder contract.
type Recorder struct {
	gatherer prometheus.Gatherer

	documents   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	confidence  prometheus.Histogram
	truncations *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the collectors with a fresh registry. Go runtime and process
// collectors are included so /metrics reports the usual baseline.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Documents extracted, labelled by detected type, extractor kind, and outcome.",
		}, []string{"type", "kind", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time spent in an extractor.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5, 10},
		}, []string{"kind"}),
		confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "confidence",
			Help:      "Type resolution confidence.",
			Buckets:   []float64{0, .5, .8, .82, .85, .9, .93, .95, .96, .98, 1},
		}),
		truncations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "truncations_total",
			Help:      "Content ceiling hits, labelled by stage (input or output).",
		}, []string{"stage"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests labelled by method and status.",
		}, []string{"method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
		}, []string{"method"}),
	}
}

// Gatherer returns the registry the collectors are registered with.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// Resolved records a type resolution.
func (r *Recorder) Resolved(docType string, confidence float64) {
	r.confidence.Observe(confidence)
}

// Extracted records a completed extraction.
func (r *Recorder) Extracted(kind, docType, outcome string, elapsed time.Duration) {
	r.documents.WithLabelValues(docType, kind, outcome).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Truncated records a content ceiling hit.
func (r *Recorder) Truncated(stage string) {
	r.truncations.WithLabelValues(stage).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests by method and response status.
func (r *Recorder) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, req)

			r.requests.WithLabelValues(req.Method, strconv.Itoa(sw.status)).Inc()
			r.latency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
