// Package logging builds the service's slog loggers.
//
// Example usage:
//
//	import "activity-feed/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger("info", "json")
//	    slog.SetDefault(logger)
//	}
//
//	func handleRequest(ctx context.Context, base *slog.Logger) {
//	    logger := logging.WithRequestID(ctx, base)
//	    logger.Info("processing request")
//	}
package logging
