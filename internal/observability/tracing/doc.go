// Package tracing provides OpenTelemetry tracing for the HTTP surface and
// the document store.
//
// Example usage:
//
//	shutdown := tracing.InitProvider(1.0)
//	defer func() { _ = shutdown(context.Background()) }()
//
//	router.Use(tracing.Middleware)
//	store = tracing.NewStore(store, otel.GetTracerProvider())
package tracing
