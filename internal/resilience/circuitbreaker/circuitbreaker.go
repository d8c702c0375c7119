// Package circuitbreaker fails document store calls fast while the store is
// unhealthy. It builds on github.com/sony/gobreaker.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"activity-feed/internal/observability/metrics"
)

// Config tunes a breaker.
type Config struct {
	Name string

	// HalfOpenRequests is the number of probe calls let through after
	// OpenTimeout.
	HalfOpenRequests uint32

	// Interval clears the closed state counts. Zero keeps them until the
	// breaker trips.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// The breaker trips once at least MinRequests calls were counted and the
	// share of failures reaches FailureRatio.
	FailureRatio float64
	MinRequests  uint32
}

// StoreConfig returns the configuration of the document store breaker.
// With a ratio of 1 it opens after 5 consecutive failures and probes again
// after 30 seconds.
func StoreConfig() Config {
	return Config{
		Name:             "document-store",
		HalfOpenRequests: 3,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureRatio:     1.0,
		MinRequests:      5,
	}
}

func (c Config) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

// isSuccessful treats a caller giving up as a success: a superseded page
// load says nothing about the store.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker {
	metrics.StoreBreakerState.WithLabelValues(cfg.Name).Set(0)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.HalfOpenRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.OpenTimeout,
		ReadyToTrip:  cfg.readyToTrip,
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, stateValue(to), to.String())
			slog.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// call runs fn through cb and restores its typed result.
func call[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
