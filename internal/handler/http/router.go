package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"activity-feed/internal/handler/http/activity"
	"activity-feed/internal/handler/http/requestid"
	"activity-feed/internal/observability/slo"
	"activity-feed/internal/observability/tracing"
)

// RouterConfig holds the dependencies of the API router.
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions interface {
		activity.Sessions
		SessionCounter
	}
	Tracker        *slo.Tracker
	DB             *sql.DB
	Breaker        BreakerState
	Scheduler      Readiness
	Version        string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// NewRouter builds the API handler.
// Middleware order: request id, recovery, logging, tracing, metrics,
// input validation, body limit, timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		Recover(logger),
		Logging(logger),
		tracing.Middleware,
		MetricsMiddleware(cfg.Tracker),
		InputValidation(),
		LimitRequestBody(maxBody),
		Timeout(cfg.RequestTimeout),
	)

	r.Method(http.MethodGet, "/health", &HealthHandler{
		DB:        cfg.DB,
		Breaker:   cfg.Breaker,
		Sessions:  cfg.Sessions,
		Scheduler: cfg.Scheduler,
		Version:   cfg.Version,
	})
	r.Method(http.MethodGet, "/ready", &ReadyHandler{DB: cfg.DB, Scheduler: cfg.Scheduler})
	r.Method(http.MethodGet, "/live", &LiveHandler{})
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	activity.Register(r, activity.Handler{Sessions: cfg.Sessions, Logger: logger})
	return r
}
