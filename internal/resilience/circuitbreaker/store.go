package circuitbreaker

import (
	"context"

	"github.com/sony/gobreaker"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Store wraps a document store with a circuit breaker.
// While the circuit is open every call fails fast with gobreaker.ErrOpenState.
type Store struct {
	cb   *gobreaker.CircuitBreaker
	next repository.DocumentStore
}

// NewStore wraps next with a breaker built from cfg.
func NewStore(next repository.DocumentStore, cfg Config) *Store {
	return &Store{cb: newBreaker(cfg), next: next}
}

var _ repository.DocumentStore = (*Store)(nil)

func (s *Store) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	return call(s.cb, func() ([]entity.Document, error) {
		return s.next.QueryRange(ctx, q)
	})
}

func (s *Store) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	return call(s.cb, func() (int64, error) {
		return s.next.CountMatching(ctx, q)
	})
}

func (s *Store) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	return call(s.cb, func() ([]entity.Document, error) {
		return s.next.GetByIDSet(ctx, collection, ids)
	})
}

// State returns the current breaker state.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

// IsOpen reports whether calls currently fail fast.
func (s *Store) IsOpen() bool {
	return s.cb.State() == gobreaker.StateOpen
}
