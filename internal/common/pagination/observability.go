package pagination

import (
	"log/slog"
	"time"
)

// LogRequest logs a page request with structured fields.
func LogRequest(logger *slog.Logger, requestID, userID, category string, page int) {
	logger.Info("Activity page request",
		"request_id", requestID,
		"user_id", userID,
		"category", category,
		"page", page)
}

// LogResponse logs a served page with duration and status.
func LogResponse(logger *slog.Logger, requestID string, page, totalPages, returnedCount int, duration time.Duration, statusCode int) {
	logger.Info("Activity page response",
		"request_id", requestID,
		"page", page,
		"total_pages", totalPages,
		"returned_count", returnedCount,
		"duration_ms", duration.Milliseconds(),
		"status", statusCode)
}

// LogError logs a pagination error with structured fields.
func LogError(logger *slog.Logger, requestID string, page int, err error, errorType string) {
	logger.Error("Pagination error",
		"request_id", requestID,
		"page", page,
		"error", err.Error(),
		"error_type", errorType)
}
