package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/infra/adapter/persistence/memory"
	"activity-feed/internal/observability/metrics"
	"activity-feed/internal/usecase/activity"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRegistry(t *testing.T, opts Options) (*Registry, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts.Now = c.Now
	store := memory.NewDocumentStore()
	r := NewRegistry(func(pt entity.PostType) *activity.Pager {
		return activity.NewPager(store, activity.Options{PostType: pt})
	}, opts)
	t.Cleanup(r.Close)
	return r, c
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r, _ := newRegistry(t, Options{})

	s, err := r.Create(entity.PostTypeSchedule)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, entity.PostTypeSchedule, s.PostType)
	require.NotNil(t, s.Pager)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s.Pager, got.Pager)

	require.NoError(t, r.Delete(s.ID))
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, activity.ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete(s.ID), activity.ErrSessionNotFound)
}

func TestRegistry_DeleteClosesPager(t *testing.T) {
	r, _ := newRegistry(t, Options{})
	s, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)
	require.NoError(t, r.Delete(s.ID))

	_, err = s.Pager.SetActiveCategory(context.Background(), "u1", entity.CategoryWritten)
	assert.Error(t, err, "closed pager rejects calls")
}

func TestRegistry_MaxSessions(t *testing.T) {
	r, _ := newRegistry(t, Options{MaxSessions: 2})
	_, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)
	_, err = r.Create(entity.PostTypeBlog)
	require.NoError(t, err)

	_, err = r.Create(entity.PostTypeBlog)
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestRegistry_EvictIdle(t *testing.T) {
	r, c := newRegistry(t, Options{IdleTTL: 10 * time.Minute})
	before := testutil.ToFloat64(metrics.SessionsClosedTotal.WithLabelValues(ReasonIdle))

	stale, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)
	fresh, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)

	c.Advance(8 * time.Minute)
	_, err = r.Get(fresh.ID)
	require.NoError(t, err)
	c.Advance(3 * time.Minute)

	n, err := r.EvictIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = r.Get(stale.ID)
	assert.ErrorIs(t, err, activity.ErrSessionNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SessionsClosedTotal.WithLabelValues(ReasonIdle)))
}

func TestRegistry_EvictIdleCanceled(t *testing.T) {
	r, c := newRegistry(t, Options{IdleTTL: time.Minute})
	_, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)
	c.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := r.EvictIdle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, r.Len(), "unprocessed sessions stay registered")

	n, err = r.EvictIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRegistry_CloseRejectsCreate(t *testing.T) {
	r, _ := newRegistry(t, Options{})
	_, err := r.Create(entity.PostTypeBlog)
	require.NoError(t, err)

	r.Close()
	assert.Equal(t, 0, r.Len())
	_, err = r.Create(entity.PostTypeBlog)
	assert.Error(t, err)
}
