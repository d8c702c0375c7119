package pagination

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts page requests served over HTTP.
	// Labels: status (HTTP status code), page_range (page bucket: 1-10, 11-50, etc.)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_pagination_requests_total",
			Help: "Total number of activity page requests",
		},
		[]string{"status", "page_range"},
	)

	// PageLoadsTotal counts committed page loads.
	// Labels: category, source (cache, store)
	PageLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_page_loads_total",
			Help: "Total number of page loads by category and source",
		},
		[]string{"category", "source"},
	)

	// DurationSeconds tracks engine operation duration.
	// Labels: operation (count, enumerate, build_cursor, materialize)
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activity_pagination_duration_seconds",
			Help:    "Engine operation duration distribution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation"},
	)

	// CursorBuildsTotal counts cursor builder runs.
	// Labels: category, mode (normal, boosted), result (cursor, exhausted, error)
	CursorBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_cursor_builds_total",
			Help: "Total number of cursor builder runs",
		},
		[]string{"category", "mode", "result"},
	)

	// StaleDiscardsTotal counts results dropped because a newer request won.
	// Labels: kind (count, load, prefetch)
	StaleDiscardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_stale_discards_total",
			Help: "Total number of superseded results discarded",
		},
		[]string{"kind"},
	)

	// PrefetchTotal counts background prefetch attempts.
	// Labels: result (stored, cached, skipped, error)
	PrefetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_prefetch_total",
			Help: "Total number of page prefetch attempts",
		},
		[]string{"result"},
	)

	// ResolverLookupsTotal counts id lookups through the batch resolver.
	// Labels: kind (posts, users), result (hit, miss)
	ResolverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_resolver_lookups_total",
			Help: "Total number of resolver id lookups by cache result",
		},
		[]string{"kind", "result"},
	)

	// ErrorsTotal counts engine errors by type.
	// Labels: type (validation, store, canceled)
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"type"},
	)
)

// RecordRequest records a page request metric.
func RecordRequest(statusCode int, page int) {
	RequestsTotal.WithLabelValues(
		fmt.Sprintf("%d", statusCode),
		getPageRangeBucket(page),
	).Inc()
}

// RecordPageLoad records a committed page load.
func RecordPageLoad(category string, fromCache bool) {
	source := "store"
	if fromCache {
		source = "cache"
	}
	PageLoadsTotal.WithLabelValues(category, source).Inc()
}

// RecordDuration records operation duration in seconds.
func RecordDuration(operation string, duration float64) {
	DurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordCursorBuild records the outcome of one cursor builder run.
func RecordCursorBuild(category string, boosted bool, result string) {
	mode := "normal"
	if boosted {
		mode = "boosted"
	}
	CursorBuildsTotal.WithLabelValues(category, mode, result).Inc()
}

// RecordStaleDiscard records a superseded result.
func RecordStaleDiscard(kind string) {
	StaleDiscardsTotal.WithLabelValues(kind).Inc()
}

// RecordPrefetch records a prefetch outcome.
func RecordPrefetch(result string) {
	PrefetchTotal.WithLabelValues(result).Inc()
}

// RecordResolverLookups records cache hits and misses for one resolve call.
func RecordResolverLookups(kind string, hits, misses int) {
	if hits > 0 {
		ResolverLookupsTotal.WithLabelValues(kind, "hit").Add(float64(hits))
	}
	if misses > 0 {
		ResolverLookupsTotal.WithLabelValues(kind, "miss").Add(float64(misses))
	}
}

// RecordError records an error metric.
// errorType should be one of: "validation", "store", "canceled"
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// getPageRangeBucket returns the page range bucket for a given page number.
func getPageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
