// Package retry repeats operations that failed with a transient error,
// backing off exponentially with jitter. It serves document store reads and
// database connection setup.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"syscall"
	"time"
)

// Config bounds the attempts and delays of WithBackoff.
type Config struct {
	// Attempts counts the first call. Values below 1 mean a single call.
	Attempts int
	// BaseDelay is the wait after the first failure; it doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps the wait before jitter.
	MaxDelay time.Duration
	// Jitter adds up to this fraction of the wait, in [0, 1].
	Jitter float64
}

// DBConfig is used while opening a connection pool.
func DBConfig() Config {
	return Config{Attempts: 5, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second, Jitter: 0.1}
}

// StoreConfig is used for interactive store reads. Page loads sit on a
// user's critical path, so delays stay short.
func StoreConfig() Config {
	return Config{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Jitter: 0.1}
}

// delay returns the wait after the given failed attempt (1-based).
func (c Config) delay(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 1; i < attempt && d < c.MaxDelay; i++ {
		d *= 2
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return withJitter(d, c.Jitter)
}

// WithBackoff calls fn until it succeeds, fails with an error IsRetryable
// rejects, runs out of attempts or ctx ends.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.Attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, err)
		}

		wait := cfg.delay(attempt)
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so IsRetryable reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsRetryable reports whether err is worth another attempt: errors marked
// Transient, broken driver connections, network timeouts and refused or
// reset connections. Context errors never are.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func withJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
