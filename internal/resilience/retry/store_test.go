package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

type flakyStore struct {
	failures int
	err      error
	calls    int
}

func (f *flakyStore) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStore) QueryRange(context.Context, repository.Query) ([]entity.Document, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []entity.Document{{Collection: "blogPosts", ID: "p1"}}, nil
}

func (f *flakyStore) CountMatching(context.Context, repository.Query) (int64, error) {
	if err := f.fail(); err != nil {
		return 0, err
	}
	return 4, nil
}

func (f *flakyStore) GetByIDSet(_ context.Context, collection string, ids []string) ([]entity.Document, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []entity.Document{{Collection: collection, ID: ids[0]}}, nil
}

func TestStore_RetriesTransientFailures(t *testing.T) {
	next := &flakyStore{failures: 2, err: Transient(errors.New("busy"))}
	s := NewStore(next, fastConfig(3))

	docs, err := s.QueryRange(context.Background(), repository.Query{Collection: "blogPosts"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 3, next.calls)
}

func TestStore_GivesUpOnPermanentFailure(t *testing.T) {
	next := &flakyStore{failures: 10, err: repository.ErrInvalidQuery}
	s := NewStore(next, fastConfig(3))

	_, err := s.CountMatching(context.Background(), repository.Query{})
	assert.ErrorIs(t, err, repository.ErrInvalidQuery)
	assert.Equal(t, 1, next.calls)
}

func TestStore_GetByIDSet(t *testing.T) {
	next := &flakyStore{failures: 1, err: Transient(errors.New("busy"))}
	s := NewStore(next, fastConfig(2))

	docs, err := s.GetByIDSet(context.Background(), "users", []string{"u1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0].ID)

	n, err := s.CountMatching(context.Background(), repository.Query{Collection: "blogPosts"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
