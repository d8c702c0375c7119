// Package config loads the process configuration of the activity feed
// server from ACTIVITY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"activity-feed/internal/infra/db"
	pkgconfig "activity-feed/internal/pkg/config"
)

// EnvPrefix prefixes every variable read by Load.
const EnvPrefix = "ACTIVITY"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrInvalidConfig wraps configuration that cannot be repaired by falling
// back to a default.
var ErrInvalidConfig = errors.New("invalid configuration")

// App is the configuration of cmd/api.
type App struct {
	Addr             string  `envconfig:"ADDR" default:":8080"`
	LogLevel         string  `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string  `envconfig:"LOG_FORMAT" default:"json"`
	Version          string  `envconfig:"VERSION" default:"dev"`
	TraceSampleRatio float64 `envconfig:"TRACE_SAMPLE_RATIO" default:"0"`

	Store   Store               `envconfig:"STORE"`
	Session Session             `envconfig:"SESSION"`
	HTTP    HTTP                `envconfig:"HTTP"`
	DB      db.ConnectionConfig `envconfig:"DB"`
}

// Store selects and tunes the document store.
type Store struct {
	Driver   string `envconfig:"DRIVER" default:"memory"`
	DSN      string `envconfig:"DSN"`
	SeedFile string `envconfig:"SEED_FILE"`
	Migrate  bool   `envconfig:"MIGRATE" default:"true"`

	// QPS limits calls to the store. Zero disables the limiter.
	QPS     float64 `envconfig:"QPS" default:"0"`
	Burst   int     `envconfig:"BURST" default:"10"`
	Retry   bool    `envconfig:"RETRY" default:"true"`
	Breaker bool    `envconfig:"BREAKER" default:"true"`
}

// Session configures the pager session registry and its janitor.
type Session struct {
	IdleTTL         time.Duration `envconfig:"IDLE_TTL" default:"30m"`
	MaxSessions     int           `envconfig:"MAX" default:"10000"`
	JanitorSchedule string        `envconfig:"JANITOR_SCHEDULE" default:"*/5 * * * *"`
	SLOSchedule     string        `envconfig:"SLO_SCHEDULE" default:"* * * * *"`
	Timezone        string        `envconfig:"TIMEZONE" default:"UTC"`
}

// HTTP configures the HTTP server.
type HTTP struct {
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Default returns the configuration used when no variable is set.
func Default() App {
	return App{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "json",
		Version:   "dev",
		Store: Store{
			Driver:  DriverMemory,
			Migrate: true,
			Burst:   10,
			Retry:   true,
			Breaker: true,
		},
		Session: Session{
			IdleTTL:         30 * time.Minute,
			MaxSessions:     10000,
			JanitorSchedule: "*/5 * * * *",
			SLOSchedule:     "* * * * *",
			Timezone:        "UTC",
		},
		HTTP: HTTP{
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		DB: db.DefaultConnectionConfig(),
	}
}

// Load reads the environment, validates the result and replaces invalid
// tunables with their defaults. Values that cannot be parsed and store
// settings that cannot work are returned as errors.
func Load(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (App, error) {
	var cfg App
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return App{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	cfg.applyFallbacks(pkgconfig.NewFallbacks(logger, metrics))
	return cfg, nil
}

// Validate rejects settings that have no safe default.
func (c App) Validate() error {
	if err := pkgconfig.ValidateOneOf(c.Store.Driver, DriverMemory, DriverPostgres, DriverSQLite); err != nil {
		return fmt.Errorf("%w: store driver: %v", ErrInvalidConfig, err)
	}
	if c.Store.Driver != DriverMemory && c.Store.DSN == "" {
		return fmt.Errorf("%w: %s_STORE_DSN is required for driver %s", ErrInvalidConfig, EnvPrefix, c.Store.Driver)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	}
	return nil
}

// SQLDriver returns the database/sql driver name of the store driver, or
// "" for the memory store.
func (s Store) SQLDriver() string {
	switch s.Driver {
	case DriverPostgres:
		return db.DriverPostgres
	case DriverSQLite:
		return db.DriverSQLite
	}
	return ""
}

func (c *App) applyFallbacks(f *pkgconfig.Fallbacks) {
	def := Default()

	pkgconfig.Check(f, "log_level", &c.LogLevel, def.LogLevel, func(v string) error {
		return pkgconfig.ValidateOneOf(v, "debug", "info", "warn", "error")
	})
	pkgconfig.Check(f, "log_format", &c.LogFormat, def.LogFormat, func(v string) error {
		return pkgconfig.ValidateOneOf(v, "json", "text")
	})
	pkgconfig.Check(f, "trace_sample_ratio", &c.TraceSampleRatio, def.TraceSampleRatio, pkgconfig.ValidateRatio)

	pkgconfig.Check(f, "store_qps", &c.Store.QPS, def.Store.QPS, func(v float64) error {
		if v < 0 {
			return fmt.Errorf("qps %v must not be negative", v)
		}
		return nil
	})
	pkgconfig.Check(f, "store_burst", &c.Store.Burst, def.Store.Burst, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 10000)
	})

	pkgconfig.Check(f, "session_idle_ttl", &c.Session.IdleTTL, def.Session.IdleTTL, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, time.Minute, 24*time.Hour)
	})
	pkgconfig.Check(f, "session_max", &c.Session.MaxSessions, def.Session.MaxSessions, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 1_000_000)
	})
	pkgconfig.Check(f, "janitor_schedule", &c.Session.JanitorSchedule, def.Session.JanitorSchedule, pkgconfig.ValidateCronSchedule)
	pkgconfig.Check(f, "slo_schedule", &c.Session.SLOSchedule, def.Session.SLOSchedule, pkgconfig.ValidateCronSchedule)
	pkgconfig.Check(f, "timezone", &c.Session.Timezone, def.Session.Timezone, pkgconfig.ValidateTimezone)

	pkgconfig.Check(f, "request_timeout", &c.HTTP.RequestTimeout, def.HTTP.RequestTimeout, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, 100*time.Millisecond, 5*time.Minute)
	})
	pkgconfig.Check(f, "shutdown_timeout", &c.HTTP.ShutdownTimeout, def.HTTP.ShutdownTimeout, pkgconfig.ValidatePositiveDuration)
	pkgconfig.Check(f, "max_body_bytes", &c.HTTP.MaxBodyBytes, def.HTTP.MaxBodyBytes, func(v int64) error {
		if v < 1024 {
			return fmt.Errorf("max body bytes %d is below minimum 1024", v)
		}
		return nil
	})

	pkgconfig.Check(f, "db_max_open_conns", &c.DB.MaxOpenConns, def.DB.MaxOpenConns, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 1000)
	})
	pkgconfig.Check(f, "db_max_idle_conns", &c.DB.MaxIdleConns, def.DB.MaxIdleConns, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 0, c.DB.MaxOpenConns)
	})

	f.Done()
}
