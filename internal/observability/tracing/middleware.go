package tracing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"activity-feed/internal/handler/http/responsewriter"
)

// TraceIDHeader echoes the trace id of the server span to clients.
const TraceIDHeader = "X-Trace-Id"

// Middleware starts a server span per request, continuing any W3C trace
// context in the headers. Requests routed by chi name the span after the
// route pattern so session ids stay out of span names.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := GetTracer().Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())
		rw := responsewriter.Wrap(w)
		r = r.WithContext(ctx)
		next.ServeHTTP(rw, r)

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.Int("http.status_code", rw.StatusCode()),
			attribute.Int("http.response_size", rw.BytesWritten()),
		}
		if rctx := chi.RouteContext(ctx); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				attrs = append(attrs, attribute.String("http.route", pattern))
			}
		}
		span.SetAttributes(attrs...)

		if status := rw.StatusCode(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
