package retry

import (
	"context"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Store retries transient document store failures.
// All store operations are reads, so every call is safe to repeat.
type Store struct {
	cfg  Config
	next repository.DocumentStore
}

// NewStore wraps next with retry logic.
func NewStore(next repository.DocumentStore, cfg Config) *Store {
	return &Store{cfg: cfg, next: next}
}

var _ repository.DocumentStore = (*Store)(nil)

func (s *Store) QueryRange(ctx context.Context, q repository.Query) (docs []entity.Document, err error) {
	err = WithBackoff(ctx, s.cfg, func() error {
		docs, err = s.next.QueryRange(ctx, q)
		return err
	})
	return docs, err
}

func (s *Store) CountMatching(ctx context.Context, q repository.Query) (n int64, err error) {
	err = WithBackoff(ctx, s.cfg, func() error {
		n, err = s.next.CountMatching(ctx, q)
		return err
	})
	return n, err
}

func (s *Store) GetByIDSet(ctx context.Context, collection string, ids []string) (docs []entity.Document, err error) {
	err = WithBackoff(ctx, s.cfg, func() error {
		docs, err = s.next.GetByIDSet(ctx, collection, ids)
		return err
	})
	return docs, err
}
