package serve

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus request metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "upmkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "serve").
	Subsystem string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus request metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// metrics holds the Prometheus metrics for the registry server.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	packagesServed  prometheus.Counter
}

// newMetrics registers the server metrics with the configured registry.
func newMetrics(opts ...MetricsOption) *metrics {
	config := MetricsConfig{
		Namespace: "upmkit",
		Subsystem: "serve",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of registry requests by route and status",
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Registry request duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"route"}),

		packagesServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "tarballs_served_total",
			Help:      "Total number of tarballs downloaded from the store",
		}),
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// middleware times every request and counts it by route and status.
// The route label uses the request path's first segment shape rather
// than the raw path, so package names do not explode cardinality.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		route := routeLabel(r.URL.Path)

		start := time.Now()
		next.ServeHTTP(rec, r)
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, httpStatusClass(rec.status)).Inc()
	})
}

// routeLabel collapses request paths onto a fixed label set.
func routeLabel(path string) string {
	switch path {
	case "/healthz", "/metrics", "/ws", "/":
		return path
	}
	if len(path) > 0 && path[0] == '/' {
		for i := 1; i < len(path); i++ {
			if path[i] == '/' {
				return "/{package}/-/{tarball}"
			}
		}
	}
	return "/{package}"
}

// httpStatusClass maps a status code to its class label (2xx, 4xx, ...).
func httpStatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
