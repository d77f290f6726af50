// Package prometheus exposes cookbook request and extraction metrics using
// the Prometheus client library.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricNameHTTPRequestsTotal     = "cookbook_http_requests_total"
	MetricNameHTTPRequestDuration   = "cookbook_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight  = "cookbook_http_requests_in_flight"
	MetricNameExtractionsTotal      = "cookbook_extractions_total"
	MetricNameExtractionDuration    = "cookbook_extraction_duration_seconds"
	MetricNameExtractionCostTotal   = "cookbook_extraction_cost_usd_total"
	MetricNameExtractionTokensTotal = "cookbook_extraction_tokens_total"
)

// Label names.
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelStrategy = "strategy"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
	LabelKind     = "kind"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

// HTTPLatencyBuckets covers fast API calls and minute-long extractions.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Metrics holds the cookbook collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	httpInFlight       prometheus.Gauge
	extractions        *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	extractionCost     *prometheus.CounterVec
	extractionTokens   *prometheus.CounterVec
}

// NewMetrics registers the cookbook collectors, plus Go runtime and process
// collectors, in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: "Total number of HTTP requests",
		}, []string{LabelMethod, LabelPath, LabelStatus}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPLatencyBuckets,
		}, []string{LabelMethod, LabelPath}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: "Current number of HTTP requests being served",
		}),
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNameExtractionsTotal,
			Help: "Recipe extractions by final strategy, provider and outcome",
		}, []string{LabelStrategy, LabelProvider, LabelOutcome}),
		extractionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricNameExtractionDuration,
			Help:    "End-to-end recipe extraction latency in seconds",
			Buckets: HTTPLatencyBuckets,
		}, []string{LabelStrategy}),
		extractionCost: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNameExtractionCostTotal,
			Help: "Estimated model spend in USD",
		}, []string{LabelProvider}),
		extractionTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNameExtractionTokensTotal,
			Help: "Model tokens used by extractions",
		}, []string{LabelProvider, LabelKind}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency. Requests are labeled by
// their chi route pattern to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)

		m.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
