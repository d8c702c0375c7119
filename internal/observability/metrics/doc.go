// Package metrics provides the process wide Prometheus metrics.
//
// It covers:
//   - HTTP request metrics (duration, count, size, in flight)
//   - Document store call metrics by operation and result
//   - Document store circuit breaker state
//   - Session registry metrics
//   - Database connection pool statistics
//
// Pagination engine metrics live next to the engine in
// internal/common/pagination. All metrics are registered with the
// Prometheus default registry and exposed via the /metrics endpoint.
//
// Example usage:
//
//	store = metrics.NewStore(store, "postgres")
//	metrics.RecordHTTPRequest("GET", "/sessions/:id", "200", time.Since(start), 0, 512)
package metrics
