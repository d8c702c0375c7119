// Package resilience groups the fault tolerance wrappers placed around the
// document store.
//
// The subpackages provide:
//   - circuitbreaker: fail fast while the store is unavailable
//   - retry: exponential backoff with jitter for transient errors
//   - throttle: a client side request rate limit
//
// Usage Example:
//
//	var store repository.DocumentStore = postgres.NewDocumentRepo(db)
//	store = throttle.NewStore(store, 50, 10)
//	store = circuitbreaker.NewStore(store, circuitbreaker.StoreConfig())
//	store = retry.NewStore(store, retry.StoreConfig())
//
// Retries wrap the breaker so an open circuit is not retried.
package resilience
