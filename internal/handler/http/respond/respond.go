// Package respond writes JSON responses and maps errors to safe client
// messages.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/service/session"
	"activity-feed/internal/usecase/activity"
)

// JSON writes v as JSON with status code. A nil v writes no body.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes err's message verbatim. Use SafeError for errors that may
// carry internal detail.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments mark messages written for clients.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"must not",
	"cannot be",
	"no active category",
	"too many",
}

// SafeError writes err's message when it is a 4xx validation style
// message, and a generic message otherwise. Hidden errors are logged
// sanitized.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := code < 500
	if isSafe {
		isSafe = false
		lower := strings.ToLower(msg)
		for _, frag := range safeFragments {
			if strings.Contains(lower, frag) {
				isSafe = true
				break
			}
		}
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// AppError pairs an internal error with the message and status shown to
// clients.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError returns an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// FromError classifies err into an AppError with a status code.
// Unknown errors become a 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return NewAppError(http.StatusBadRequest, verr.Error(), nil)
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidCategory),
		errors.Is(err, activity.ErrInvalidPage):
		return NewAppError(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, activity.ErrSessionNotFound):
		return NewAppError(http.StatusNotFound, "session not found", nil)
	case errors.Is(err, activity.ErrNoActiveCategory):
		return NewAppError(http.StatusConflict, "no active category: select a category first", nil)
	case errors.Is(err, session.ErrTooManySessions):
		return NewAppError(http.StatusServiceUnavailable, "too many sessions", nil)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return NewAppError(http.StatusServiceUnavailable, "store temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusGatewayTimeout, "request timed out", err)
	}
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// SafeErrorV2 writes an AppError's user message and logs its internal
// error. Other errors go through SafeError with code.
func SafeErrorV2(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}

	SafeError(w, code, err)
}

// Fail classifies err with FromError and writes it.
func Fail(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	appErr := FromError(err)
	SafeErrorV2(w, appErr.Code, appErr)
}
