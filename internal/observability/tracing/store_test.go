package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/infra/adapter/persistence/memory"
	"activity-feed/internal/repository"
)

type failingStore struct {
	repository.DocumentStore
	err error
}

func (f failingStore) CountMatching(context.Context, repository.Query) (int64, error) {
	return 0, f.err
}

func newTracedStore(next repository.DocumentStore) (*Store, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return NewStore(next, tp), exporter
}

func TestStore_QueryRangeSpan(t *testing.T) {
	mem := memory.NewDocumentStore(
		entity.Document{Collection: "blogPosts", ID: "p1", CreatedAt: time.Unix(10, 0)},
		entity.Document{Collection: "blogPosts", ID: "p2", CreatedAt: time.Unix(20, 0)},
	)
	s, exporter := newTracedStore(mem)

	docs, err := s.QueryRange(context.Background(), repository.Query{Collection: "blogPosts", Limit: 25}.Where("authorId", ""))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "store.QueryRange", spans[0].Name)
	attrs := attrMap(spans[0].Attributes)
	assert.Equal(t, "blogPosts", attrs["store.collection"].AsString())
	assert.Equal(t, int64(25), attrs["store.limit"].AsInt64())
	assert.Equal(t, int64(1), attrs["store.filters"].AsInt64())
	assert.Equal(t, int64(len(docs)), attrs["store.returned"].AsInt64())
	assert.False(t, attrs["store.resume"].AsBool())
}

func TestStore_GetByIDSetSpan(t *testing.T) {
	mem := memory.NewDocumentStore(entity.Document{Collection: "users", ID: "u1"})
	s, exporter := newTracedStore(mem)

	_, err := s.GetByIDSet(context.Background(), "users", []string{"u1", "u2"})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes)
	assert.Equal(t, int64(2), attrs["store.ids"].AsInt64())
	assert.Equal(t, int64(1), attrs["store.returned"].AsInt64())
}

func TestStore_RecordsErrors(t *testing.T) {
	s, exporter := newTracedStore(failingStore{err: errors.New("quota exceeded")})

	_, err := s.CountMatching(context.Background(), repository.Query{Collection: "likes"})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "quota exceeded", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestStore_CanceledIsNotAnError(t *testing.T) {
	s, exporter := newTracedStore(failingStore{err: context.Canceled})

	_, err := s.CountMatching(context.Background(), repository.Query{Collection: "likes"})
	assert.ErrorIs(t, err, context.Canceled)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}
