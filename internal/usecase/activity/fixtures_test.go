package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/infra/adapter/persistence/memory"
	"activity-feed/internal/repository"
)

var baseTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// countingStore wraps the memory store, counts remote calls and lets tests
// inject failures or block a specific range scan.
type countingStore struct {
	*memory.DocumentStore

	mu          sync.Mutex
	ranges      int
	counts      int
	lookups     int
	lookupSizes []int
	rangeErr    error
	countErr    error
	lookupErr   error
	// rangeHook runs before the n-th (1-based) QueryRange call.
	rangeHook func(ctx context.Context, n int, q repository.Query)
}

func newCountingStore(docs ...entity.Document) *countingStore {
	return &countingStore{DocumentStore: memory.NewDocumentStore(docs...)}
}

func (s *countingStore) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	s.mu.Lock()
	s.ranges++
	n, hook, err := s.ranges, s.rangeHook, s.rangeErr
	s.mu.Unlock()
	if hook != nil {
		hook(ctx, n, q)
	}
	if err != nil {
		return nil, err
	}
	return s.DocumentStore.QueryRange(ctx, q)
}

func (s *countingStore) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	s.mu.Lock()
	s.counts++
	err := s.countErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.DocumentStore.CountMatching(ctx, q)
}

func (s *countingStore) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	s.mu.Lock()
	s.lookups++
	s.lookupSizes = append(s.lookupSizes, len(ids))
	err := s.lookupErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.DocumentStore.GetByIDSet(ctx, collection, ids)
}

func (s *countingStore) calls() (ranges, counts, lookups int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranges, s.counts, s.lookups
}

func (s *countingStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges, s.counts, s.lookups = 0, 0, 0
	s.lookupSizes = nil
}

func rawJSON(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// at returns a timestamp i minutes before baseTime. Larger i is older.
func at(i int) time.Time {
	return baseTime.Add(-time.Duration(i) * time.Minute)
}

func blogPost(id, author string, created time.Time) entity.Document {
	return entity.Document{
		Collection: "blogPosts",
		ID:         id,
		CreatedAt:  created,
		Data: rawJSON(map[string]any{
			"authorId": author,
			"title":    "title " + id,
			"content":  "content of " + id + " with a long travel story",
		}),
	}
}

func user(id, name string) entity.Document {
	return entity.Document{
		Collection: entity.CollectionUsers,
		ID:         id,
		Data:       rawJSON(map[string]any{"displayName": name}),
	}
}

func interaction(collection, uid, id, postID, postType string, created time.Time) entity.Document {
	data := map[string]any{"type": postType}
	if postID != "" {
		data["postId"] = postID
	}
	return entity.Document{
		Collection: collection,
		ID:         id,
		Parent:     &entity.ParentRef{Collection: entity.CollectionUsers, ID: uid},
		CreatedAt:  created,
		Data:       rawJSON(data),
	}
}

func comment(parentCollection, postID, id, author string, created time.Time, extra map[string]any) entity.Document {
	data := map[string]any{"authorId": author, "content": "comment " + id}
	for k, v := range extra {
		data[k] = v
	}
	return entity.Document{
		Collection: entity.CollectionComments,
		ID:         id,
		Parent:     &entity.ParentRef{Collection: parentCollection, ID: postID},
		CreatedAt:  created,
		Data:       rawJSON(data),
	}
}

// writtenPosts returns n posts by author, newest first: p01, p02, ...
func writtenPosts(author string, n int) []entity.Document {
	docs := make([]entity.Document, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, blogPost(fmt.Sprintf("p%02d", i), author, at(i)))
	}
	return docs
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		if r.CommentID != "" {
			out[i] = r.CommentID
			continue
		}
		out[i] = r.PostID
	}
	return out
}

func testPolicy() pagination.OverscanPolicy {
	return pagination.UniformPolicy(pagination.DefaultNormalMultiplier, pagination.DefaultBoostedMultiplier)
}

func newTestPager(store repository.DocumentStore) *Pager {
	return NewPager(store, Options{Config: pagination.DefaultConfig(), Logger: discardLogger})
}
