// Package requestid propagates a per request identifier through the
// X-Request-ID header and the request context.
package requestid

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key holding the request id.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader carries the request id in requests and responses.
	RequestIDHeader = "X-Request-ID"
)

// validID bounds client supplied ids to a safe charset and length.
var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// FromContext returns the request id of ctx, or "".
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware reuses a well formed incoming X-Request-ID or generates a
// UUID, stores it in the context and echoes it in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validID.MatchString(requestID) {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}
