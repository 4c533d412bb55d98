// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Modality outcomes.
const (
	OutcomeAvailable = "available"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affect_fusion_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "affect_fusion_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	AdapterLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affect_fusion_adapter_latency_seconds",
			Help:    "Modality adapter latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"modality"},
	)

	ModalityOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affect_fusion_modality_outcomes_total",
			Help: "Modality adapter outcomes",
		},
		[]string{"modality", "outcome"},
	)

	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affect_fusion_analyses_total",
			Help: "Completed analyses by emotion tag",
		},
		[]string{"emotion_tag"},
	)

	Failures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affect_fusion_stage_failures_total",
			Help: "Recovered failures by pipeline stage",
		},
		[]string{"stage"},
	)

	LexiconWords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affect_fusion_lexicon_words",
			Help: "Number of words in the loaded emotion lexicon",
		},
	)
)

// ObserveAdapter records an adapter call duration.
func ObserveAdapter(modality string, d time.Duration) {
	AdapterLatency.WithLabelValues(modality).Observe(d.Seconds())
}

// RecordModality counts an adapter outcome.
func RecordModality(modality, outcome string) {
	ModalityOutcomes.WithLabelValues(modality, outcome).Inc()
}

// RecordAnalysis counts a completed analysis.
func RecordAnalysis(tag string) {
	Analyses.WithLabelValues(tag).Inc()
}

// RecordFailure counts a recovered failure in stage.
func RecordFailure(stage string) {
	Failures.WithLabelValues(stage).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and durations labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
