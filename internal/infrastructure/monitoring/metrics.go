// Package monitoring handles Prometheus metrics collection for the
// suggestion pipeline and HTTP surface.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector registers and serves the application's Prometheus
// metrics. A private registry keeps tests from tripping over duplicate
// registration.
type MetricsCollector struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	suggestionJobsSubmitted prometheus.Counter
	suggestionJobsFinished  *prometheus.CounterVec

	providerCallDuration *prometheus.HistogramVec
	providerFallbacks    prometheus.Counter
}

// NewMetricsCollector creates a metrics collector with its own registry.
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()

	m := &MetricsCollector{
		registry: registry,
		logger:   logger.Named("metrics"),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		suggestionJobsSubmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggestion_jobs_submitted_total",
				Help: "Total number of suggestion jobs submitted",
			},
		),
		suggestionJobsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggestion_jobs_finished_total",
				Help: "Total number of suggestion jobs by terminal status",
			},
			[]string{"status"},
		),
		providerCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "ai_provider_call_duration_seconds",
				Help: "Completion call latency per provider",
				// Local models routinely take tens of seconds.
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "outcome"},
		),
		providerFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ai_provider_fallback_total",
				Help: "Times the secondary provider was tried after a primary failure",
			},
		),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.suggestionJobsSubmitted,
		m.suggestionJobsFinished,
		m.providerCallDuration,
		m.providerFallbacks,
	)
	return m
}

// JobSubmitted implements suggest.Recorder.
func (m *MetricsCollector) JobSubmitted() {
	m.suggestionJobsSubmitted.Inc()
}

// JobFinished implements suggest.Recorder.
func (m *MetricsCollector) JobFinished(status suggestion.Status) {
	m.suggestionJobsFinished.WithLabelValues(string(status)).Inc()
}

// ProviderCall implements ai.Observer.
func (m *MetricsCollector) ProviderCall(provider string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.providerCallDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

// Fallback implements ai.Observer.
func (m *MetricsCollector) Fallback(from, to string) {
	m.providerFallbacks.Inc()
}

// RecordHTTPRequest records one served request.
func (m *MetricsCollector) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the /metrics endpoint.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
