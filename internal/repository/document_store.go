package repository

import (
	"context"
	"errors"
	"fmt"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
)

// ErrInvalidQuery is returned by stores for queries they cannot execute.
var ErrInvalidQuery = errors.New("invalid query")

// DocumentStore is the remote query capability of the hosted document store.
// It offers ordered range scans, exact counts and small id-set lookups.
// There are no joins and no offset skipping.
type DocumentStore interface {
	// QueryRange returns up to q.Limit documents matching q, in canonical
	// order (created_at desc, id desc, parent id desc), strictly after
	// q.StartAfter when set.
	QueryRange(ctx context.Context, q Query) ([]entity.Document, error)
	// CountMatching returns the exact number of documents matching q.
	// StartAfter and Limit are ignored.
	CountMatching(ctx context.Context, q Query) (int64, error)
	// GetByIDSet returns the root documents of collection whose ids are in
	// ids. Missing ids are omitted. Callers pass at most the id batch limit.
	GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error)
}

// Filter is an equality predicate on a top level string field.
type Filter struct {
	Field string
	Value string
}

// Query describes a range scan or count.
//
// Collection names a root collection, a subcollection when Parent is set,
// or every subcollection of that name when Group is set.
type Query struct {
	Collection string
	Parent     *entity.ParentRef
	Group      bool
	Filters    []Filter
	StartAfter *pagination.Cursor
	Limit      int
}

// Where returns a copy of q with an additional equality filter.
func (q Query) Where(field, value string) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// After returns a copy of q resuming after c. A nil cursor starts at the
// beginning.
func (q Query) After(c *pagination.Cursor) Query {
	q.StartAfter = c
	return q
}

// WithLimit returns a copy of q with the given limit.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Validate checks the query shape.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalidQuery)
	}
	if q.Group && q.Parent != nil {
		return fmt.Errorf("%w: group scan cannot have a parent", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter field is required", ErrInvalidQuery)
		}
	}
	return nil
}

// Matches reports whether d is in scope of q and passes its filters and
// start cursor. Limit is not considered.
func (q Query) Matches(d entity.Document) bool {
	if d.Collection != q.Collection {
		return false
	}
	switch {
	case q.Group:
		if d.Parent == nil {
			return false
		}
	case q.Parent != nil:
		if d.Parent == nil || *d.Parent != *q.Parent {
			return false
		}
	default:
		if d.Parent != nil {
			return false
		}
	}
	for _, f := range q.Filters {
		if d.Field(f.Field) != f.Value {
			return false
		}
	}
	if q.StartAfter != nil && !q.StartAfter.Follows(CursorOf(d)) {
		return false
	}
	return true
}

// CursorOf returns the scan position of d.
func CursorOf(d entity.Document) pagination.Cursor {
	return pagination.NewCursor(d.CreatedAt, d.ID, d.ParentID())
}
