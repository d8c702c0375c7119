// Command api serves activity feed sessions over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/config"
	"activity-feed/internal/domain/entity"
	hhttp "activity-feed/internal/handler/http"
	"activity-feed/internal/infra/adapter/persistence/memory"
	pgRepo "activity-feed/internal/infra/adapter/persistence/postgres"
	sqliteRepo "activity-feed/internal/infra/adapter/persistence/sqlite"
	"activity-feed/internal/infra/db"
	"activity-feed/internal/infra/worker"
	"activity-feed/internal/observability/logging"
	"activity-feed/internal/observability/metrics"
	"activity-feed/internal/observability/slo"
	"activity-feed/internal/observability/tracing"
	pkgconfig "activity-feed/internal/pkg/config"
	"activity-feed/internal/repository"
	"activity-feed/internal/resilience/circuitbreaker"
	"activity-feed/internal/resilience/retry"
	"activity-feed/internal/resilience/throttle"
	"activity-feed/internal/service/session"
	"activity-feed/internal/usecase/activity"
)

func main() {
	boot := logging.NewLogger(os.Getenv("ACTIVITY_LOG_LEVEL"), os.Getenv("ACTIVITY_LOG_FORMAT"))
	cfg, err := config.Load(boot, pkgconfig.NewConfigMetrics(nil, "api"))
	if err != nil {
		boot.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// backend is the assembled document store with the handles health checks need.
type backend struct {
	store   repository.DocumentStore
	db      *sql.DB
	breaker *circuitbreaker.Store
}

func run(ctx context.Context, logger *slog.Logger, cfg config.App) error {
	shutdownTracing := tracing.InitProvider(cfg.TraceSampleRatio)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	be, err := openBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	if be.db != nil {
		defer func() {
			if err := be.db.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	pcfg := pagination.LoadFromEnv()
	policy, err := pcfg.Policy()
	if err != nil {
		return fmt.Errorf("load overscan policy: %w", err)
	}
	logger.Info("pagination configured",
		slog.Int("page_size", pcfg.PageSize),
		slog.Int("raw_multiplier", pcfg.NormalMultiplier),
		slog.Int("raw_multiplier_boosted", pcfg.BoostedMultiplier),
		slog.Int("id_batch_limit", pcfg.IDBatchLimit),
		slog.Int("prefetch_depth", pcfg.PrefetchDepth))

	registry := session.NewRegistry(func(pt entity.PostType) *activity.Pager {
		return activity.NewPager(be.store, activity.Options{
			Config:   pcfg,
			Policy:   policy,
			PostType: pt,
			Logger:   logger,
		})
	}, session.Options{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
		Logger:      logger,
	})
	defer registry.Close()

	tracker := slo.NewTracker(0)
	scheduler, err := startScheduler(logger, cfg, registry, tracker, be.db)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Warn("scheduler did not stop in time", slog.Any("error", err))
		}
	}()

	rc := hhttp.RouterConfig{
		Logger:         logger,
		Sessions:       registry,
		Tracker:        tracker,
		DB:             be.db,
		Scheduler:      scheduler,
		Version:        cfg.Version,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}
	if be.breaker != nil {
		rc.Breaker = be.breaker
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           hhttp.NewRouter(rc),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", cfg.Version),
			slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped", slog.Int("open_sessions", registry.Len()))
	return nil
}

// openBackend builds the configured store and wraps it, innermost first,
// with metrics, throttling, the circuit breaker, retries and tracing.
func openBackend(ctx context.Context, logger *slog.Logger, cfg config.App) (backend, error) {
	var (
		be  backend
		raw repository.DocumentStore
	)

	switch cfg.Store.Driver {
	case config.DriverMemory:
		store := memory.NewDocumentStore()
		if cfg.Store.SeedFile != "" {
			seeded, err := memory.LoadSeedFile(cfg.Store.SeedFile)
			if err != nil {
				return backend{}, err
			}
			store = seeded
		}
		logger.Info("memory store ready", slog.Int("documents", store.Len()))
		raw = store

	default:
		driver := cfg.Store.SQLDriver()
		database, err := db.Open(ctx, driver, cfg.Store.DSN, cfg.DB)
		if err != nil {
			return backend{}, err
		}
		be.db = database
		if cfg.Store.Migrate {
			if err := db.MigrateUp(ctx, database, driver); err != nil {
				_ = database.Close()
				return backend{}, fmt.Errorf("migrate: %w", err)
			}
		}

		var putter interface {
			repository.DocumentStore
			Put(ctx context.Context, docs ...entity.Document) error
		}
		if cfg.Store.Driver == config.DriverPostgres {
			putter = pgRepo.NewDocumentRepo(database)
		} else {
			putter = sqliteRepo.NewDocumentRepo(database)
		}
		if cfg.Store.SeedFile != "" {
			docs, err := memory.ReadSeedFile(cfg.Store.SeedFile)
			if err != nil {
				_ = database.Close()
				return backend{}, err
			}
			if err := putter.Put(ctx, docs...); err != nil {
				_ = database.Close()
				return backend{}, fmt.Errorf("import seed: %w", err)
			}
			logger.Info("seed imported", slog.Int("documents", len(docs)))
		}
		raw = putter
	}

	var store repository.DocumentStore = metrics.NewStore(raw, cfg.Store.Driver)
	if cfg.Store.QPS > 0 {
		store = throttle.NewStore(store, cfg.Store.QPS, cfg.Store.Burst)
	}
	if cfg.Store.Breaker {
		be.breaker = circuitbreaker.NewStore(store, circuitbreaker.StoreConfig())
		store = be.breaker
	}
	if cfg.Store.Retry {
		store = retry.NewStore(store, retry.StoreConfig())
	}
	be.store = tracing.NewStore(store, otel.GetTracerProvider())
	return be, nil
}

func startScheduler(logger *slog.Logger, cfg config.App, registry *session.Registry, tracker *slo.Tracker, database *sql.DB) (*worker.Scheduler, error) {
	scheduler, err := worker.NewScheduler(worker.Options{
		Timezone: cfg.Session.Timezone,
		Logger:   logger,
		Metrics:  worker.NewMetrics(nil),
	})
	if err != nil {
		return nil, err
	}

	err = scheduler.Add("evict_idle_sessions", cfg.Session.JanitorSchedule, func(ctx context.Context) error {
		n, err := registry.EvictIdle(ctx)
		if n > 0 {
			logger.Info("idle sessions evicted", slog.Int("count", n), slog.Int("open", registry.Len()))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = scheduler.Add("slo_flush", cfg.Session.SLOSchedule, func(context.Context) error {
		snap := tracker.Flush()
		if database != nil {
			metrics.UpdateDBConnectionStats(database.Stats())
		}
		attrs := []any{
			slog.Int("requests", snap.Requests),
			slog.Int("errors", snap.Errors),
			slog.Float64("availability", snap.Availability),
			slog.Duration("p99", snap.P99),
		}
		if breaches := slo.Breaches(snap); snap.Requests > 0 && len(breaches) > 0 {
			logger.Warn("slo targets missed", append(attrs, slog.Any("indicators", breaches))...)
			return nil
		}
		logger.Debug("slo window flushed", attrs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
