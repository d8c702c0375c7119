// Package observability groups the logging, metrics, tracing and SLO
// infrastructure of the activity feed service.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: Prometheus HTTP, store and session metrics
//   - tracing: OpenTelemetry spans for HTTP and the document store
//   - slo: service level indicators published as gauges
//
// Example usage:
//
//	import (
//	    "activity-feed/internal/observability/logging"
//	    "activity-feed/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger("info", "json")
//	    logger.Info("application started")
//
//	    store = metrics.NewStore(store, "postgres")
//	}
package observability
