package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Store metrics track calls to the document store
var (
	// StoreCallsTotal counts store calls by operation and result (success, failure, canceled)
	StoreCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_store_calls_total",
			Help: "Total number of document store calls",
		},
		[]string{"backend", "operation", "result"},
	)

	// StoreCallDuration measures store call latency
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_store_call_duration_seconds",
			Help:    "Document store call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"backend", "operation"},
	)

	// StoreDocumentsReturned measures documents returned per read
	StoreDocumentsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_store_documents_returned",
			Help:    "Documents returned per document store read",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"backend", "operation"},
	)
)

// Breaker metrics track the store circuit breaker
var (
	// StoreBreakerState is 0 while closed, 1 while half-open and 2 while open
	StoreBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "document_store_breaker_state",
			Help: "Circuit breaker state of the document store (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	StoreBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_store_breaker_transitions_total",
			Help: "Total number of circuit breaker state changes by target state",
		},
		[]string{"breaker", "to"},
	)
)

// Session metrics track the pager session registry
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "activity_sessions_active",
			Help: "Number of live pagination sessions",
		},
	)

	// SessionsClosedTotal counts closed sessions by reason (deleted, idle)
	SessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_sessions_closed_total",
			Help: "Total number of closed pagination sessions",
		},
		[]string{"reason"},
	)
)

// Database metrics track the SQL connection pool
var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordBreakerTransition records a breaker moving to state to, given as
// its gauge value and name.
func RecordBreakerTransition(breaker string, value float64, to string) {
	StoreBreakerState.WithLabelValues(breaker).Set(value)
	StoreBreakerTransitionsTotal.WithLabelValues(breaker, to).Inc()
}

// RecordSessionOpened increments the live session gauge.
func RecordSessionOpened() {
	SessionsActive.Inc()
}

// RecordSessionClosed decrements the live session gauge.
func RecordSessionClosed(reason string) {
	SessionsActive.Dec()
	SessionsClosedTotal.WithLabelValues(reason).Inc()
}

// UpdateDBConnectionStats copies pool statistics into the connection gauges.
func UpdateDBConnectionStats(stats sql.DBStats) {
	DBConnectionsActive.Set(float64(stats.InUse))
	DBConnectionsIdle.Set(float64(stats.Idle))
}
