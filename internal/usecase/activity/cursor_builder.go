package activity

import (
	"context"
	"fmt"
	"time"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// CursorBuilder finds page boundaries. Starting after a cursor it walks raw
// batches until pageSize distinct accepted items have been seen and returns
// the position of the last raw document consumed.
type CursorBuilder struct {
	store    repository.DocumentStore
	policy   pagination.OverscanPolicy
	postType entity.PostType
}

// NewCursorBuilder returns a builder scanning posts of type t.
func NewCursorBuilder(store repository.DocumentStore, policy pagination.OverscanPolicy, t entity.PostType) *CursorBuilder {
	return &CursorBuilder{store: store, policy: policy, postType: t}
}

// BuildCursor returns the end cursor of the page starting after from, or
// nil when the source holds nothing after from. A page that ends with the
// source still yields a cursor; the build after it returns nil.
func (b *CursorBuilder) BuildCursor(ctx context.Context, category entity.Category, userID string, from *pagination.Cursor, pageSize int, boosted bool) (*pagination.Cursor, error) {
	start := time.Now()
	defer func() {
		pagination.RecordDuration("build_cursor", time.Since(start).Seconds())
	}()

	src, err := sourceFor(category, userID, b.postType)
	if err != nil {
		return nil, err
	}
	limit := b.policy.BatchSize(string(category), pageSize, boosted)
	q := src.query.WithLimit(limit).After(from)

	seen := make(map[string]struct{}, pageSize)
	var last *pagination.Cursor
	for {
		docs, err := b.store.QueryRange(ctx, q)
		if err != nil {
			pagination.RecordCursorBuild(string(category), boosted, "error")
			return nil, fmt.Errorf("build cursor: %w", err)
		}
		for _, d := range docs {
			c := repository.CursorOf(d)
			last = &c
			if key, ok := src.key(d); ok {
				seen[key] = struct{}{}
			}
			if len(seen) >= pageSize {
				pagination.RecordCursorBuild(string(category), boosted, "cursor")
				return last, nil
			}
		}
		if len(docs) < limit {
			break
		}
		q = q.After(last)
	}

	if last == nil {
		pagination.RecordCursorBuild(string(category), boosted, "exhausted")
		return nil, nil
	}
	pagination.RecordCursorBuild(string(category), boosted, "cursor")
	return last, nil
}

// Enumerate builds every end cursor from the beginning of the source with
// boosted batches.
func (b *CursorBuilder) Enumerate(ctx context.Context, category entity.Category, userID string, pageSize int) ([]pagination.Cursor, error) {
	var cursors []pagination.Cursor
	var prev *pagination.Cursor
	for {
		next, err := b.BuildCursor(ctx, category, userID, prev, pageSize, true)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return cursors, nil
		}
		cursors = append(cursors, *next)
		prev = next
	}
}

// Extend appends end cursors to chain until it holds want entries or the
// source is exhausted. Builds are boosted when more than boostAfter cursors
// are still missing. The returned slice never aliases chain.
func (b *CursorBuilder) Extend(ctx context.Context, category entity.Category, userID string, chain []pagination.Cursor, want, pageSize int, boostAfter int) ([]pagination.Cursor, error) {
	out := make([]pagination.Cursor, len(chain), max(len(chain), want))
	copy(out, chain)
	for remaining := want - len(out); remaining > 0; remaining = want - len(out) {
		var prev *pagination.Cursor
		if len(out) > 0 {
			prev = &out[len(out)-1]
		}
		next, err := b.BuildCursor(ctx, category, userID, prev, pageSize, remaining > boostAfter)
		if err != nil {
			return out, err
		}
		if next == nil {
			break
		}
		out = append(out, *next)
	}
	return out, nil
}
