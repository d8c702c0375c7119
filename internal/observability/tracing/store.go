package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Store creates a client span around each document store call.
type Store struct {
	tracer trace.Tracer
	next   repository.DocumentStore
}

// NewStore wraps next, creating spans with a tracer from tp.
func NewStore(next repository.DocumentStore, tp trace.TracerProvider) *Store {
	return &Store{tracer: tp.Tracer(instrumentationName), next: next}
}

var _ repository.DocumentStore = (*Store)(nil)

func queryAttributes(q repository.Query) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("store.collection", q.Collection),
		attribute.Bool("store.group", q.Group),
		attribute.Int("store.filters", len(q.Filters)),
		attribute.Bool("store.resume", q.StartAfter != nil),
	}
	if q.Limit > 0 {
		attrs = append(attrs, attribute.Int("store.limit", q.Limit))
	}
	return attrs
}

func (s *Store) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	ctx, span := s.start(ctx, "store.QueryRange", queryAttributes(q)...)
	docs, err := s.next.QueryRange(ctx, q)
	span.SetAttributes(attribute.Int("store.returned", len(docs)))
	finish(span, err)
	return docs, err
}

func (s *Store) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	ctx, span := s.start(ctx, "store.CountMatching", queryAttributes(q)...)
	n, err := s.next.CountMatching(ctx, q)
	span.SetAttributes(attribute.Int64("store.count", n))
	finish(span, err)
	return n, err
}

func (s *Store) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	ctx, span := s.start(ctx, "store.GetByIDSet",
		attribute.String("store.collection", collection),
		attribute.Int("store.ids", len(ids)))
	docs, err := s.next.GetByIDSet(ctx, collection, ids)
	span.SetAttributes(attribute.Int("store.returned", len(docs)))
	finish(span, err)
	return docs, err
}
