// Package metrics wires up the application's Prometheus instruments on a
// custom registry (never the global default, so tests stay isolated from
// global state) and exposes them to dispatch via plain function hooks so
// that package stays import-free of the metrics stack.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	NotificationLatency *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}, []string{"channel"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of permanently failed notifications (retries exhausted).",
		}, []string{"channel"}),

		NotificationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_processing_seconds",
			Help:    "End-to-end processing latency from first attempt to broker ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of admission API HTTP requests.",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Admission API HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationLatency,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// DispatchHooks returns the metric callback functions expected by
// dispatch.Hooks. Centralizes the prometheus observation calls here so
// the dispatch package stays free of the metrics import.
func (m *Metrics) DispatchHooks() (
	onSent func(domain.Channel, time.Duration),
	onFailed func(domain.Channel),
) {
	onSent = func(ch domain.Channel, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(string(ch)).Inc()
		m.NotificationLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
	}
	onFailed = func(ch domain.Channel) {
		m.NotificationsFailed.WithLabelValues(string(ch)).Inc()
	}
	return
}

// responseWriter wraps http.ResponseWriter to capture the status code
// written by the handler, mirroring the correlation-logging middleware's
// own wrapper in internal/api/middleware.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPDuration returns chi-compatible middleware that records a request
// count and duration histogram for every admission API route.
func (m *Metrics) HTTPDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
