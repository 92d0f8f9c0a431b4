// Package metrics holds the Prometheus collectors for backend calls and portal requests.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policydesk",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Backend API calls by method, endpoint and outcome.",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policydesk",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "endpoint"},
	)

	portalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policydesk",
			Subsystem: "portal",
			Name:      "requests_total",
			Help:      "Portal HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	portalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policydesk",
			Subsystem: "portal",
			Name:      "request_duration_seconds",
			Help:      "Duration of portal HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		apiRequests,
		apiDuration,
		portalRequests,
		portalDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveAPICall records one backend call. outcome is "ok", a status code, or "network".
func ObserveAPICall(method, path, outcome string, d time.Duration) {
	ep := Endpoint(path)
	apiRequests.WithLabelValues(strings.ToUpper(method), ep, outcome).Inc()
	apiDuration.WithLabelValues(strings.ToUpper(method), ep).Observe(d.Seconds())
}

// InstrumentHandler wraps next with portal request metrics.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		path := Endpoint(r.URL.Path)
		portalRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		portalDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Endpoint collapses numeric path segments and drops the query so label cardinality stays bounded.
func Endpoint(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
