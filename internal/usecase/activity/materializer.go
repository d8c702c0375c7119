package activity

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

// Materializer produces the hydrated rows of one page.
type Materializer struct {
	store    repository.DocumentStore
	policy   pagination.OverscanPolicy
	postType entity.PostType
	resolver *Resolver
	logger   *slog.Logger
}

// NewMaterializer returns a materializer for posts of type t.
func NewMaterializer(store repository.DocumentStore, policy pagination.OverscanPolicy, t entity.PostType, resolver *Resolver, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{store: store, policy: policy, postType: t, resolver: resolver, logger: logger}
}

// MaterializePage scans the category source after from and returns up to
// pageSize rows. Dangling references are skipped and the scan continues
// until the page is full or the source is exhausted.
func (m *Materializer) MaterializePage(ctx context.Context, category entity.Category, userID string, from *pagination.Cursor, pageSize int) ([]Row, error) {
	start := time.Now()
	defer func() {
		pagination.RecordDuration("materialize", time.Since(start).Seconds())
	}()

	src, err := sourceFor(category, userID, m.postType)
	if err != nil {
		return nil, err
	}

	var fill func(context.Context, []entity.Document, *pageFill) error
	switch category {
	case entity.CategoryWritten:
		fill = m.fillWritten
	case entity.CategoryLikes, entity.CategoryBookmarks:
		fill = m.fillInteractions
	default:
		fill = m.fillComments
	}

	limit := m.policy.BatchSize(string(category), pageSize, false)
	q := src.query.WithLimit(limit).After(from)
	page := &pageFill{size: pageSize, seen: make(map[string]struct{}, pageSize)}
	for !page.full() {
		docs, err := m.store.QueryRange(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("materialize %s page: %w", category, err)
		}
		if err := fill(ctx, docs, page); err != nil {
			return nil, fmt.Errorf("materialize %s page: %w", category, err)
		}
		if len(docs) < limit {
			break
		}
		last := repository.CursorOf(docs[len(docs)-1])
		q = q.After(&last)
	}

	m.resolveAuthors(ctx, page.rows)
	return page.rows, nil
}

// pageFill accumulates rows for one page, keyed for in-page deduplication.
type pageFill struct {
	size int
	seen map[string]struct{}
	rows []Row
}

func (p *pageFill) full() bool { return len(p.rows) >= p.size }

func (p *pageFill) has(key string) bool {
	_, ok := p.seen[key]
	return ok
}

func (p *pageFill) add(key string, r Row) {
	p.seen[key] = struct{}{}
	p.rows = append(p.rows, r)
}

func (m *Materializer) fillWritten(_ context.Context, docs []entity.Document, page *pageFill) error {
	for _, d := range docs {
		if page.full() {
			return nil
		}
		if page.has(d.ID) {
			continue
		}
		p, err := entity.DecodePost(d)
		if err != nil {
			m.logger.Warn("skip undecodable post", slog.String("path", d.Path()), slog.Any("error", err))
			continue
		}
		page.add(d.ID, postRow(p, m.postType))
	}
	return nil
}

func (m *Materializer) fillInteractions(ctx context.Context, docs []entity.Document, page *pageFill) error {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if id := d.Field("postId"); id != "" {
			ids = append(ids, id)
		}
	}
	posts, err := m.resolver.Posts(ctx, m.postType, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if page.full() {
			return nil
		}
		if page.has(id) {
			continue
		}
		p, ok := posts[id]
		if !ok {
			continue
		}
		page.add(id, postRow(p, m.postType))
	}
	return nil
}

func (m *Materializer) fillComments(ctx context.Context, docs []entity.Document, page *pageFill) error {
	collection := m.postType.Collection()
	comments := make([]entity.Comment, 0, len(docs))
	postIDs := make([]string, 0, len(docs))
	var mentioned []string
	batchSeen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.ParentCollection() != collection {
			continue
		}
		c, err := entity.DecodeComment(d)
		if err != nil {
			m.logger.Warn("skip undecodable comment", slog.String("path", d.Path()), slog.Any("error", err))
			continue
		}
		if c.Deleted || page.has(c.ID) {
			continue
		}
		if _, dup := batchSeen[c.ID]; dup {
			continue
		}
		batchSeen[c.ID] = struct{}{}
		comments = append(comments, c)
		postIDs = append(postIDs, c.PostID)
		for _, mention := range c.Mentions {
			if mention.UID != "" {
				mentioned = append(mentioned, mention.UID)
			}
		}
	}
	if len(comments) == 0 {
		return nil
	}

	var (
		posts map[string]entity.Post
		users map[string]entity.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = m.resolver.Posts(gctx, m.postType, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = m.resolver.Users(gctx, mentioned)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([]Row, 0, len(comments))
	for _, c := range comments {
		p, ok := posts[c.PostID]
		if !ok {
			continue
		}
		rows = append(rows, commentRow(c, p, m.postType, users))
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(b.SortKey, a.SortKey)
	})
	for _, r := range rows {
		if page.full() {
			return nil
		}
		page.add(r.CommentID, r)
	}
	return nil
}

// resolveAuthors fills AuthorName on rows. Lookup failures leave names empty.
func (m *Materializer) resolveAuthors(ctx context.Context, rows []Row) {
	if len(rows) == 0 {
		return
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.AuthorID != "" {
			ids = append(ids, r.AuthorID)
		}
	}
	users, err := m.resolver.Users(ctx, ids)
	if err != nil {
		m.logger.Warn("resolve row authors failed", slog.Any("error", err))
		return
	}
	for i := range rows {
		if u, ok := users[rows[i].AuthorID]; ok {
			rows[i].AuthorName = u.DisplayName
		}
	}
}
