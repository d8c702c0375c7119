// Package throttle limits the request rate sent to the document store.
// The hosted store bills per read and enforces per-project quotas, so the
// process shares one token bucket across every session.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Store waits for a token before each call to next.
type Store struct {
	limiter *rate.Limiter
	next    repository.DocumentStore
}

// NewStore allows qps calls per second on average with bursts of burst.
// A non-positive qps disables the limit.
func NewStore(next repository.DocumentStore, qps float64, burst int) *Store {
	limit := rate.Limit(qps)
	if qps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Store{limiter: rate.NewLimiter(limit, burst), next: next}
}

var _ repository.DocumentStore = (*Store)(nil)

func (s *Store) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}
	return nil
}

func (s *Store) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.QueryRange(ctx, q)
}

func (s *Store) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	return s.next.CountMatching(ctx, q)
}

func (s *Store) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.GetByIDSet(ctx, collection, ids)
}
