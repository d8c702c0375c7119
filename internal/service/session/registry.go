// Package session keeps the pager of every open activity feed session.
// A session lives until it is deleted, the client goes idle for longer
// than the idle TTL, or the registry is closed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/observability/metrics"
	"activity-feed/internal/usecase/activity"
)

// Close reasons reported to the session metrics.
const (
	ReasonDeleted  = "deleted"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

// ErrTooManySessions is returned by Create when the registry is full.
var ErrTooManySessions = errors.New("too many sessions")

// Factory builds a fresh pager scoped to postType.
type Factory func(postType entity.PostType) *activity.Pager

// Options configures a Registry.
type Options struct {
	IdleTTL     time.Duration
	MaxSessions int
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is an open session as seen by callers.
type Session struct {
	ID        uuid.UUID
	PostType  entity.PostType
	CreatedAt time.Time
	Pager     *activity.Pager
}

type entry struct {
	session  Session
	lastUsed time.Time
}

// Registry maps session ids to their pagers.
type Registry struct {
	newPager Factory
	idleTTL  time.Duration
	max      int
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	closed   bool
	sessions map[uuid.UUID]*entry
}

// NewRegistry returns an empty registry building pagers with newPager.
func NewRegistry(newPager Factory, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		newPager: newPager,
		idleTTL:  opts.IdleTTL,
		max:      opts.MaxSessions,
		logger:   opts.Logger,
		now:      opts.Now,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Create opens a session scoped to postType.
func (r *Registry) Create(postType entity.PostType) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Session{}, fmt.Errorf("create session: registry closed")
	}
	if r.max > 0 && len(r.sessions) >= r.max {
		return Session{}, ErrTooManySessions
	}

	now := r.now()
	s := Session{
		ID:        uuid.New(),
		PostType:  postType,
		CreatedAt: now,
		Pager:     r.newPager(postType),
	}
	r.sessions[s.ID] = &entry{session: s, lastUsed: now}
	metrics.RecordSessionOpened()
	r.logger.Debug("session opened",
		slog.String("session_id", s.ID.String()),
		slog.String("post_type", string(postType)))
	return s, nil
}

// Get returns the session id and marks it used.
func (r *Registry) Get(id uuid.UUID) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return Session{}, activity.ErrSessionNotFound
	}
	e.lastUsed = r.now()
	return e.session, nil
}

// Delete closes the session id.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return activity.ErrSessionNotFound
	}
	r.closeSession(e.session, ReasonDeleted)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle closes every session unused for longer than the idle TTL and
// returns how many were closed.
func (r *Registry) EvictIdle(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []Session
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for i, s := range idle {
		if err := ctx.Err(); err != nil {
			r.requeue(idle[i:])
			return i, fmt.Errorf("evict idle sessions: %w", err)
		}
		r.closeSession(s, ReasonIdle)
	}
	if len(idle) > 0 {
		r.logger.Info("idle sessions evicted", slog.Int("count", len(idle)))
	}
	return len(idle), nil
}

// Close closes every session and rejects further creates.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := make([]Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		all = append(all, e.session)
	}
	clear(r.sessions)
	r.mu.Unlock()

	for _, s := range all {
		r.closeSession(s, ReasonShutdown)
	}
}

// requeue puts sessions back that an interrupted eviction did not close.
// They keep their old last use so the next run evicts them.
func (r *Registry) requeue(rest []Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stale := r.now().Add(-r.idleTTL - time.Nanosecond)
	for _, s := range rest {
		r.sessions[s.ID] = &entry{session: s, lastUsed: stale}
	}
}

func (r *Registry) closeSession(s Session, reason string) {
	s.Pager.Close()
	metrics.RecordSessionClosed(reason)
	r.logger.Debug("session closed",
		slog.String("session_id", s.ID.String()),
		slog.String("reason", reason))
}
