package activity

import (
	"context"
	"sync"
)

// latest is a single-slot supervisor. Each begin supersedes the previous
// run: its context is cancelled and its token stops being current.
type latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// begin starts a new run derived from parent and returns its context and
// token.
func (l *latest) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	l.cancel = cancel
	return ctx, l.seq
}

// current reports whether token belongs to the latest run.
func (l *latest) current(token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq == token
}

// stop cancels the latest run and invalidates its token.
func (l *latest) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}

// bind returns a context cancelled when either ctx or scope is done.
// Values come from ctx.
func bind(ctx, scope context.Context) (context.Context, context.CancelFunc) {
	bound, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(scope, cancel)
	return bound, func() {
		stop()
		cancel()
	}
}
