package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"activity-feed/internal/handler/http/respond"
)

// Timeout bounds each request to d. The handler keeps running with a
// canceled context after the deadline, but its writes are dropped and the
// client receives 504. A non-positive d disables the middleware.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{w: w, header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				tw.flush()
			case <-ctx.Done():
				tw.expire()
			}
		})
	}
}

// timeoutWriter buffers the handler's response until it completes so that
// a 504 can replace it when the deadline passes first.
type timeoutWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu       sync.Mutex
	status   int
	body     []byte
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.header }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.status != 0 {
		return
	}
	tw.status = code
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	tw.body = append(tw.body, b...)
	return len(b), nil
}

func (tw *timeoutWriter) flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	tw.w.WriteHeader(tw.status)
	_, _ = tw.w.Write(tw.body)
}

func (tw *timeoutWriter) expire() {
	tw.mu.Lock()
	tw.timedOut = true
	tw.mu.Unlock()
	respond.JSON(tw.w, http.StatusGatewayTimeout, map[string]string{"error": "request timed out"})
}
