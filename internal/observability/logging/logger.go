package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"activity-feed/internal/handler/http/requestid"
)

// ParseLevel maps debug, info, warn and error to slog levels.
// Unknown values select info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger writing to stdout.
// Format "text" selects human-readable output; anything else is JSON.
func NewLogger(level, format string) *slog.Logger {
	return New(os.Stdout, level, format)
}

// New creates a logger writing to w.
// Source locations are added when debug logging is enabled.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithRequestID returns a logger carrying the request id and, when the
// context holds a sampled span, its trace id.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	var args []any
	if reqID := requestid.FromContext(ctx); reqID != "" {
		args = append(args, slog.String("request_id", reqID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		args = append(args, slog.String("trace_id", sc.TraceID().String()))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
