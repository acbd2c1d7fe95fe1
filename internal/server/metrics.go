// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes the instrumentation middleware used on every route.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// requestsTotal counts completed analysis requests, partitioned by
	// operation (qa, summarize, extract, auto) and outcome ("ok",
	// "invalid", "upstream_error", or "error").
	requestsTotal *prometheus.CounterVec

	// requestDuration records the wall-clock duration of each analysis
	// request from receipt to response, partitioned by operation.
	requestDuration *prometheus.HistogramVec

	// answerConfidence records the confidence score of each answer,
	// partitioned by operation. Only qa and auto produce confidence.
	answerConfidence *prometheus.HistogramVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler name, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyst",
			Subsystem: "requests",
			Name:      "total",
			Help:      "Total number of analysis requests completed, partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analyst",
			Subsystem: "requests",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of analysis requests from receipt to response.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"operation"}),

		answerConfidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analyst",
			Subsystem: "answers",
			Name:      "confidence",
			Help:      "Confidence score distribution of served answers, partitioned by operation.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"operation"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyst",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "analyst",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// instrument wraps next so that every request updates the HTTP request
// counter and latency histogram under the given logical handler name.
func (s *Server) instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)

		s.metrics.httpRequestsTotal.WithLabelValues(r.Method, name, strconv.Itoa(rw.status)).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(r.Method, name).Observe(time.Since(start).Seconds())
	})
}
