// Package main applies the document store schema and imports seed documents.
// Usage: activity-migrate [--down] [--seed FILE]
//
// The store driver, DSN and pool settings are read from the same ACTIVITY_*
// variables as the api command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"activity-feed/internal/config"
	"activity-feed/internal/infra/adapter/persistence/memory"
	pgRepo "activity-feed/internal/infra/adapter/persistence/postgres"
	sqliteRepo "activity-feed/internal/infra/adapter/persistence/sqlite"
	"activity-feed/internal/infra/db"
	"activity-feed/internal/observability/logging"
	pkgconfig "activity-feed/internal/pkg/config"
)

func main() {
	var (
		down     bool
		seedFile string
		timeout  time.Duration
	)
	flag.BoolVar(&down, "down", false, "Drop the documents schema instead of creating it")
	flag.StringVar(&seedFile, "seed", "", "JSON seed file to import after migrating (defaults to ACTIVITY_STORE_SEED_FILE)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	logger := logging.NewLogger(os.Getenv("ACTIVITY_LOG_LEVEL"), os.Getenv("ACTIVITY_LOG_FORMAT"))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger, pkgconfig.NewConfigMetrics(nil, "migrate"))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if seedFile == "" {
		seedFile = cfg.Store.SeedFile
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, logger, cfg, down, seedFile); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.App, down bool, seedFile string) error {
	driver := cfg.Store.SQLDriver()
	if driver == "" {
		return errors.New("ACTIVITY_STORE_DRIVER must be postgres or sqlite")
	}

	database, err := db.Open(ctx, driver, cfg.Store.DSN, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if down {
		if err := db.MigrateDown(ctx, database); err != nil {
			return err
		}
		logger.Info("schema dropped", slog.String("driver", driver))
		return nil
	}

	if err := db.MigrateUp(ctx, database, driver); err != nil {
		return err
	}
	logger.Info("schema applied", slog.String("driver", driver))

	if seedFile == "" {
		return nil
	}
	docs, err := memory.ReadSeedFile(seedFile)
	if err != nil {
		return err
	}
	start := time.Now()
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		err = pgRepo.NewDocumentRepo(database).Put(ctx, docs...)
	default:
		err = sqliteRepo.NewDocumentRepo(database).Put(ctx, docs...)
	}
	if err != nil {
		return fmt.Errorf("import seed: %w", err)
	}
	logger.Info("seed imported",
		slog.String("file", seedFile),
		slog.Int("documents", len(docs)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
