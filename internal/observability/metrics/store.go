package metrics

import (
	"context"
	"errors"
	"time"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Store records call counts and latency for a document store backend.
type Store struct {
	backend string
	next    repository.DocumentStore
}

// NewStore wraps next, labelling its metrics with backend.
func NewStore(next repository.DocumentStore, backend string) *Store {
	return &Store{backend: backend, next: next}
}

var _ repository.DocumentStore = (*Store)(nil)

func callResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "failure"
	}
}

func (s *Store) observe(op string, start time.Time, err error) {
	StoreCallsTotal.WithLabelValues(s.backend, op, callResult(err)).Inc()
	StoreCallDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *Store) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	start := time.Now()
	docs, err := s.next.QueryRange(ctx, q)
	s.observe("query_range", start, err)
	if err == nil {
		StoreDocumentsReturned.WithLabelValues(s.backend, "query_range").Observe(float64(len(docs)))
	}
	return docs, err
}

func (s *Store) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	start := time.Now()
	n, err := s.next.CountMatching(ctx, q)
	s.observe("count_matching", start, err)
	return n, err
}

func (s *Store) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	start := time.Now()
	docs, err := s.next.GetByIDSet(ctx, collection, ids)
	s.observe("get_by_id_set", start, err)
	if err == nil {
		StoreDocumentsReturned.WithLabelValues(s.backend, "get_by_id_set").Observe(float64(len(docs)))
	}
	return docs, err
}
