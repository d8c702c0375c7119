package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"activity-feed/internal/handler/http/pathutil"
	"activity-feed/internal/handler/http/responsewriter"
	"activity-feed/internal/observability/metrics"
	"activity-feed/internal/observability/slo"
)

// MetricsMiddleware records request count, latency and sizes labelled by
// route template, and feeds every outcome to tracker when it is not nil.
func MetricsMiddleware(tracker *slo.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			status := wrapped.StatusCode()
			metrics.RecordHTTPRequest(
				r.Method,
				routeLabel(r),
				strconv.Itoa(status),
				duration,
				int(max(r.ContentLength, 0)),
				wrapped.BytesWritten(),
			)
			if tracker != nil {
				tracker.Observe(status, duration)
			}
		})
	}
}

// routeLabel prefers the matched chi pattern and falls back to the
// normalized path for requests routed outside chi.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return pathutil.NormalizePath(r.URL.Path)
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
