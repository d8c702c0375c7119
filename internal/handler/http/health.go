package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"activity-feed/internal/observability/metrics"
)

// HealthResponse is the body of the /health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check. Status is healthy,
// degraded or unhealthy.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// BreakerState reports the state of the store circuit breaker.
type BreakerState interface {
	State() gobreaker.State
}

// SessionCounter reports the number of open sessions.
type SessionCounter interface {
	Len() int
}

// Readiness reports whether a background component is running.
type Readiness interface {
	Ready() bool
}

// HealthHandler reports the state of the store, the circuit breaker, the
// session registry and the scheduler. DB is nil for the memory store.
type HealthHandler struct {
	DB        *sql.DB
	Breaker   BreakerState
	Sessions  SessionCounter
	Scheduler Readiness
	Version   string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"store": h.checkStore(ctx)}
	if h.Breaker != nil {
		checks["circuit_breaker"] = checkBreaker(h.Breaker.State())
	}
	if h.Sessions != nil {
		checks["sessions"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"open": h.Sessions.Len()},
		}
	}
	if h.Scheduler != nil {
		checks["scheduler"] = checkReady(h.Scheduler.Ready())
	}

	status, code := "healthy", http.StatusOK
	for _, c := range checks {
		if c.Status == "unhealthy" {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: "healthy", Message: "in-memory store"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnectionStats(stats)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: "degraded", Message: "connection pool max connections not configured", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// checkBreaker reports an open breaker as degraded: the engine keeps
// serving single page fallbacks while the store recovers.
func checkBreaker(state gobreaker.State) CheckStatus {
	details := map[string]any{"state": state.String()}
	switch state {
	case gobreaker.StateOpen:
		return CheckStatus{Status: "degraded", Message: "store circuit breaker open", Details: details}
	case gobreaker.StateHalfOpen:
		return CheckStatus{Status: "degraded", Message: "store circuit breaker probing", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func checkReady(ready bool) CheckStatus {
	if ready {
		return CheckStatus{Status: "healthy"}
	}
	return CheckStatus{Status: "unhealthy", Message: "not running"}
}

// ReadyHandler answers 200 once the store answers pings and the scheduler
// is running.
type ReadyHandler struct {
	DB        *sql.DB
	Scheduler Readiness
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
	}
	if h.Scheduler != nil && !h.Scheduler.Ready() {
		http.Error(w, "scheduler not ready", http.StatusServiceUnavailable)
		return
	}
	writeText(w, "ready")
}

// LiveHandler always answers 200.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, "alive")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("health: failed to encode response", slog.Any("error", err))
	}
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Default().Error("health: failed to write response", slog.Any("error", err))
	}
}
