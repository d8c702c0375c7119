package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/observability/metrics"
	"activity-feed/internal/observability/slo"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(nil))
	r.Get("/sessions/{id}/activity/pages/{page}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	label := "/sessions/{id}/activity/pages/{page}"
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, label, "200")
	before := testutil.ToFloat64(counter)

	for _, p := range []string{"/sessions/a/activity/pages/1", "/sessions/b/activity/pages/7"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_FallsBackToNormalizedPath(t *testing.T) {
	h := MetricsMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/other", "404")
	before := testutil.ToFloat64(counter)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/12345", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/67890", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_FeedsTracker(t *testing.T) {
	tracker := slo.NewTracker(16)
	codes := []int{http.StatusOK, http.StatusOK, http.StatusInternalServerError, http.StatusBadRequest}
	i := 0
	h := MetricsMiddleware(tracker)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(codes[i])
		i++
	}))
	for range codes {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions", nil))
	}

	snap := tracker.Flush()
	assert.Equal(t, 4, snap.Requests)
	assert.Equal(t, 1, snap.Errors)
	assert.InDelta(t, 0.75, snap.Availability, 1e-9)
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	var during float64
	h := MetricsMiddleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		during = testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}

func TestMetricsHandler(t *testing.T) {
	metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200").Inc()

	w := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "http_requests_total"))
}
