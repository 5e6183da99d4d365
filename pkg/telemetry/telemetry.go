// Package telemetry exposes prometheus metrics for engine operations and
// HTTP traffic, served at /metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songbook_operations_total",
		Help: "Engine operations by kind and outcome.",
	}, []string{"kind", "status"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "songbook_operation_duration_seconds",
		Help:    "Engine operation latency by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "songbook_cache_hits_total",
		Help: "Document cache hits.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "songbook_cache_misses_total",
		Help: "Document cache misses.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songbook_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
)

// ObserveOperation records one engine operation.
func ObserveOperation(kind, status string, d time.Duration) {
	operations.WithLabelValues(kind, status).Inc()
	operationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// CacheHit counts a document cache hit.
func CacheHit() { cacheHits.Inc() }

// CacheMiss counts a document cache miss.
func CacheMiss() { cacheMisses.Inc() }

// Middleware counts requests once the handler has written its status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(srw.status)).Inc()
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
