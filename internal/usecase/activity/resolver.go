package activity

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Resolver looks documents up by id in batches and memoizes the results for
// the lifetime of a session. Entries are never evicted. Ids that do not
// resolve are not cached.
type Resolver struct {
	store repository.DocumentStore
	batch int

	mu    sync.Mutex
	cache map[string]map[string]entity.Document // collection -> id -> doc
}

// NewResolver returns a resolver issuing lookups of at most batchLimit ids.
func NewResolver(store repository.DocumentStore, batchLimit int) *Resolver {
	if batchLimit < 1 {
		batchLimit = pagination.DefaultIDBatchLimit
	}
	return &Resolver{
		store: store,
		batch: batchLimit,
		cache: make(map[string]map[string]entity.Document),
	}
}

// ResolveByIDs returns the documents of collection for ids. Cached ids are
// served from memory; the rest are deduplicated, chunked and fetched
// concurrently. Ids that do not exist are omitted from the result.
func (r *Resolver) ResolveByIDs(ctx context.Context, collection string, ids []string) (map[string]entity.Document, error) {
	out := make(map[string]entity.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	r.mu.Lock()
	cached := r.cache[collection]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := cached[id]; ok {
			out[id] = d
			continue
		}
		missing = append(missing, id)
	}
	r.mu.Unlock()

	pagination.RecordResolverLookups(lookupKind(collection), len(seen)-len(missing), len(missing))
	if len(missing) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunkIDs(missing, r.batch) {
		g.Go(func() error {
			docs, err := r.store.GetByIDSet(gctx, collection, chunk)
			if err != nil {
				return err
			}
			r.remember(collection, docs)
			mu.Lock()
			for _, d := range docs {
				out[d.ID] = d
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve %s by ids: %w", collection, err)
	}
	return out, nil
}

// Posts resolves post ids within the collection of post type t.
// Documents that fail to decode are treated as missing.
func (r *Resolver) Posts(ctx context.Context, t entity.PostType, ids []string) (map[string]entity.Post, error) {
	docs, err := r.ResolveByIDs(ctx, t.Collection(), ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]entity.Post, len(docs))
	for id, d := range docs {
		p, err := entity.DecodePost(d)
		if err != nil {
			continue
		}
		out[id] = p
	}
	return out, nil
}

// Users resolves user ids to public profiles.
func (r *Resolver) Users(ctx context.Context, ids []string) (map[string]entity.User, error) {
	docs, err := r.ResolveByIDs(ctx, entity.CollectionUsers, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]entity.User, len(docs))
	for id, d := range docs {
		u, err := entity.DecodeUser(d)
		if err != nil {
			continue
		}
		out[id] = u
	}
	return out, nil
}

// Cached reports how many documents of collection are memoized.
func (r *Resolver) Cached(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache[collection])
}

func (r *Resolver) remember(collection string, docs []entity.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.cache[collection]
	if !ok {
		m = make(map[string]entity.Document, len(docs))
		r.cache[collection] = m
	}
	for _, d := range docs {
		m[d.ID] = d
	}
}

func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func lookupKind(collection string) string {
	if collection == entity.CollectionUsers {
		return "users"
	}
	return "posts"
}
