package config

import (
	"fmt"
	"log/slog"
)

// Result is the outcome of validating one configuration value.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// WithFallback validates value and substitutes defaultValue when the
// validator rejects it. A nil validator accepts every value.
func WithFallback[T any](field string, value, defaultValue T, validate func(T) error) Result[T] {
	if validate == nil {
		return Result[T]{Value: value}
	}
	if err := validate(value); err != nil {
		return Result[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%v': %v, falling back to default '%v'", field, value, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: value}
}

// Fallbacks applies WithFallback to a series of fields and reports every
// substitution to the logger and the config metrics.
type Fallbacks struct {
	logger  *slog.Logger
	metrics *ConfigMetrics
	applied []string
}

// NewFallbacks returns a Fallbacks reporting to logger and metrics.
// metrics may be nil.
func NewFallbacks(logger *slog.Logger, metrics *ConfigMetrics) *Fallbacks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallbacks{logger: logger, metrics: metrics}
}

// Applied lists the fields that fell back, in check order.
func (f *Fallbacks) Applied() []string { return f.applied }

// Done records the load timestamp and whether any fallback is active.
func (f *Fallbacks) Done() {
	if f.metrics == nil {
		return
	}
	f.metrics.SetFallbackActive(len(f.applied) > 0)
	f.metrics.RecordLoadTimestamp()
}

func (f *Fallbacks) report(field, warning string) {
	f.applied = append(f.applied, field)
	if f.metrics != nil {
		f.metrics.RecordValidationError(field)
		f.metrics.RecordFallback(field)
	}
	f.logger.Warn("configuration fallback applied",
		slog.String("field", field),
		slog.String("warning", warning))
}

// Check validates *target in place, resetting it to defaultValue on failure.
func Check[T any](f *Fallbacks, field string, target *T, defaultValue T, validate func(T) error) {
	r := WithFallback(field, *target, defaultValue, validate)
	*target = r.Value
	if r.FallbackApplied {
		f.report(field, r.Warning)
	}
}
