// Package memory provides an in-process implementation of the document
// store used for development seeds and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// DocumentStore keeps documents in memory, keyed by path.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]entity.Document
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore returns a store holding docs.
func NewDocumentStore(docs ...entity.Document) *DocumentStore {
	s := &DocumentStore{docs: make(map[string]entity.Document, len(docs))}
	s.Put(docs...)
	return s
}

// Put inserts or replaces documents.
func (s *DocumentStore) Put(docs ...entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.Path()] = d
	}
}

// Delete removes the document at path, if present.
func (s *DocumentStore) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *DocumentStore) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("QueryRange: %w", err)
	}
	matched := s.match(q)
	slices.SortFunc(matched, func(a, b entity.Document) int {
		return pagination.Compare(repository.CursorOf(b), repository.CursorOf(a))
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *DocumentStore) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.StartAfter = nil
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("CountMatching: %w", err)
	}
	return int64(len(s.match(q))), nil
}

func (s *DocumentStore) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.docs[collection+"/"+id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *DocumentStore) match(q repository.Query) []entity.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Document, 0, 16)
	for _, d := range s.docs {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
