package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/service/session"
	"activity-feed/internal/usecase/activity"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, struct {
		ID string `json:"id"`
	}{ID: "s1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":"s1"}`, strings.TrimSpace(w.Body.String()))

	w = httptest.NewRecorder()
	JSON(w, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		err     error
		wantMsg string
	}{
		{name: "validation", code: http.StatusBadRequest, err: errors.New("user_id is required"), wantMsg: "user_id is required"},
		{name: "not found", code: http.StatusNotFound, err: errors.New("session not found"), wantMsg: "session not found"},
		{name: "unknown 4xx is hidden", code: http.StatusBadRequest, err: errors.New("pq: syntax error"), wantMsg: "internal server error"},
		{name: "5xx is hidden", code: http.StatusInternalServerError, err: errors.New("invalid memory address"), wantMsg: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.code, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}

	w := httptest.NewRecorder()
	SafeError(w, http.StatusBadRequest, nil)
	assert.Empty(t, w.Body.String())
}

func TestAppError(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	e := NewAppError(http.StatusServiceUnavailable, "store unavailable", inner)
	assert.Equal(t, "dial tcp: refused", e.Error())
	assert.ErrorIs(t, e, inner)
	assert.Equal(t, "only user", NewAppError(http.StatusBadRequest, "only user", nil).Error())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "validation", err: &entity.ValidationError{Field: "user_id", Message: "is required"}, code: http.StatusBadRequest},
		{name: "invalid category", err: fmt.Errorf("%w: %q", activity.ErrInvalidCategory, "x"), code: http.StatusBadRequest},
		{name: "invalid page", err: activity.ErrInvalidPage, code: http.StatusBadRequest},
		{name: "session", err: activity.ErrSessionNotFound, code: http.StatusNotFound},
		{name: "no category", err: activity.ErrNoActiveCategory, code: http.StatusConflict},
		{name: "full", err: session.ErrTooManySessions, code: http.StatusServiceUnavailable},
		{name: "breaker", err: fmt.Errorf("query: %w", gobreaker.ErrOpenState), code: http.StatusServiceUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, code: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("boom"), code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, FromError(tt.err).Code)
		})
	}

	existing := NewAppError(http.StatusTeapot, "teapot", nil)
	assert.Same(t, existing, FromError(fmt.Errorf("wrapped: %w", existing)))
}

func TestSafeErrorV2(t *testing.T) {
	w := httptest.NewRecorder()
	SafeErrorV2(w, http.StatusInternalServerError,
		NewAppError(http.StatusServiceUnavailable, "store temporarily unavailable", errors.New("postgres://u:p@h/db down")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "store temporarily unavailable", decodeError(t, w))

	w = httptest.NewRecorder()
	SafeErrorV2(w, http.StatusBadRequest, errors.New("page must be positive"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "page must be positive", decodeError(t, w))
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(w, activity.ErrSessionNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session not found", decodeError(t, w))

	w = httptest.NewRecorder()
	Fail(w, errors.New("secret internals"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w))
}
