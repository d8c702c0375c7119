package activity

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"activity-feed/internal/common/pagination"
	"activity-feed/internal/domain/entity"
	"activity-feed/internal/observability/logging"
	"activity-feed/internal/repository"
)

// boostAfter is the number of missing cursors above which a page jump
// builds cursors with the boosted overscan.
const boostAfter = 3

// Options configures a Pager.
type Options struct {
	Config   pagination.Config
	Policy   pagination.OverscanPolicy
	PostType entity.PostType
	Logger   *slog.Logger
}

// Pager is the session scoped controller of one activity feed. It owns the
// cursor chain, the page cache and the document caches, and guarantees that
// only the latest request commits its result.
type Pager struct {
	store        repository.DocumentStore
	cfg          pagination.Config
	postType     entity.PostType
	resolver     *Resolver
	builder      *CursorBuilder
	materializer *Materializer
	logger       *slog.Logger

	root      context.Context
	closeRoot context.CancelFunc
	epochs    latest
	loads     latest
	bg        sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	epoch       uint64
	epochCtx    context.Context
	ready       chan struct{}
	userID      string
	category    entity.Category
	phase       Phase
	page        int
	totalPages  int
	cursors     []pagination.Cursor
	cursorReady bool
	rows        []Row
	loading     bool
	pages       *pageCache
}

// NewPager returns an idle pager over store.
func NewPager(store repository.DocumentStore, opts Options) *Pager {
	cfg := opts.Config
	if cfg.PageSize == 0 {
		cfg = pagination.DefaultConfig()
	}
	policy := opts.Policy
	if policy.Default == (pagination.Overscan{}) {
		policy = pagination.UniformPolicy(cfg.NormalMultiplier, cfg.BoostedMultiplier)
	}
	postType := opts.PostType
	if postType == "" {
		postType = entity.PostTypeBlog
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := NewResolver(store, cfg.IDBatchLimit)
	root, cancel := context.WithCancel(context.Background())
	return &Pager{
		store:        store,
		cfg:          cfg,
		postType:     postType,
		resolver:     resolver,
		builder:      NewCursorBuilder(store, policy, postType),
		materializer: NewMaterializer(store, policy, postType, resolver, logger),
		logger:       logger,
		root:         root,
		closeRoot:    cancel,
		phase:        PhaseIdle,
		page:         1,
		totalPages:   1,
		pages:        newPageCache(),
	}
}

// SetActiveCategory selects the feed of userID for category. It discards
// the previous selection's cursors and cached pages, cancels its in-flight
// work, determines the page count and loads page 1.
//
// Comments are counted by building every cursor up front; the other
// categories use one exact count. A failed count leaves a single page.
func (p *Pager) SetActiveCategory(ctx context.Context, userID string, category entity.Category) (State, error) {
	if err := entity.ValidateID("user_id", userID); err != nil {
		return State{}, err
	}
	if !category.Valid() {
		return State{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return State{}, ErrSessionNotFound
	}
	epochCtx, epoch := p.epochs.begin(p.root)
	p.loads.stop()
	ready := make(chan struct{})
	p.epoch, p.epochCtx, p.ready = epoch, epochCtx, ready
	p.userID, p.category = userID, category
	p.phase = PhaseCounting
	p.page, p.totalPages = 1, 1
	p.cursors = nil
	p.cursorReady = !category.RequiresEnumeration()
	p.rows = nil
	p.loading = false
	p.pages = newPageCache()
	p.mu.Unlock()

	logger := logging.WithRequestID(ctx, p.logger).With(
		slog.String("user_id", userID),
		slog.String("category", string(category)),
	)

	start := time.Now()
	total, cursors, err := p.countPages(ctx, epochCtx, userID, category)

	p.mu.Lock()
	if !p.epochs.current(epoch) {
		p.mu.Unlock()
		close(ready)
		pagination.RecordStaleDiscard("count")
		logger.Debug("discard superseded page count")
		return p.State(), nil
	}
	if err != nil {
		logger.Warn("page count failed, showing a single page", slog.Any("error", err))
		pagination.RecordError("store")
		total, cursors = 1, nil
	}
	p.totalPages = total
	p.cursors = cursors
	p.cursorReady = true
	p.phase = PhaseReady
	p.mu.Unlock()
	close(ready)

	logger.Info("category selected",
		slog.Int("total_pages", total),
		slog.Duration("duration", time.Since(start)))

	return p.GoToPage(ctx, 1)
}

func (p *Pager) countPages(ctx, epochCtx context.Context, userID string, category entity.Category) (int, []pagination.Cursor, error) {
	cctx, cancel := bind(ctx, epochCtx)
	defer cancel()

	if category.RequiresEnumeration() {
		start := time.Now()
		cursors, err := p.builder.Enumerate(cctx, category, userID, p.cfg.PageSize)
		pagination.RecordDuration("enumerate", time.Since(start).Seconds())
		if err != nil {
			return 0, nil, err
		}
		return pagination.PagesFromCursors(len(cursors)), cursors, nil
	}

	src, err := sourceFor(category, userID, p.postType)
	if err != nil {
		return 0, nil, err
	}
	start := time.Now()
	n, err := p.store.CountMatching(cctx, src.query)
	pagination.RecordDuration("count", time.Since(start).Seconds())
	if err != nil {
		return 0, nil, fmt.Errorf("count %s: %w", category, err)
	}
	return pagination.CalculateTotalPages(n, p.cfg.PageSize), nil, nil
}

// GoToPage navigates to page n, clamped into [1, TotalPages]. Cached pages
// are served without remote calls. Otherwise the cursor chain is extended
// as far as n, the page is materialized and cached, and the next pages are
// prefetched in the background.
//
// A load superseded by a newer request returns the newer state without
// committing. A failed load shows an empty page.
func (p *Pager) GoToPage(ctx context.Context, n int) (State, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return State{}, ErrSessionNotFound
	}
	if p.category == "" {
		p.mu.Unlock()
		return State{}, ErrNoActiveCategory
	}
	epoch, ready := p.epoch, p.ready
	p.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return p.State(), ctx.Err()
	}

	p.mu.Lock()
	if epoch != p.epoch {
		s := p.snapshotLocked()
		p.mu.Unlock()
		return s, nil
	}
	n = pagination.ClampPage(n, p.totalPages)
	key := pageKey{UserID: p.userID, Category: p.category, Page: n}
	if rows, ok := p.pages.get(key); ok {
		p.loads.stop()
		p.page, p.rows = n, rows
		p.loading, p.phase = false, PhaseReady
		s := p.snapshotLocked()
		p.mu.Unlock()
		pagination.RecordPageLoad(string(key.Category), true)
		return s, nil
	}

	ticketCtx, ticket := p.loads.begin(p.epochCtx)
	p.page = n
	p.loading, p.phase = true, PhaseLoading
	userID, category := p.userID, p.category
	cursors := slices.Clone(p.cursors)
	pages, epochCtx := p.pages, p.epochCtx
	p.mu.Unlock()

	lctx, release := bind(ctx, ticketCtx)
	defer release()

	logger := logging.WithRequestID(ctx, p.logger).With(
		slog.String("user_id", userID),
		slog.String("category", string(category)),
		slog.Int("page", n),
	)

	res, err := p.load(lctx, category, userID, cursors, n)

	p.mu.Lock()
	defer p.mu.Unlock()
	if epoch != p.epoch {
		pagination.RecordStaleDiscard("load")
		logger.Debug("discard page from previous selection")
		return p.snapshotLocked(), nil
	}
	p.mergeCursorsLocked(res.cursors)
	if err == nil {
		pages.put(pageKey{UserID: userID, Category: category, Page: res.page}, res.rows)
	}
	if !p.loads.current(ticket) {
		pagination.RecordStaleDiscard("load")
		logger.Debug("discard superseded page load")
		return p.snapshotLocked(), nil
	}

	p.loading, p.phase = false, PhaseReady
	if err != nil {
		logger.Warn("page load failed", slog.Any("error", err))
		pagination.RecordError("store")
		p.rows = []Row{}
		return p.snapshotLocked(), nil
	}
	if res.clamped {
		logger.Info("requested page beyond the end, clamped", slog.Int("real_pages", res.page))
		p.totalPages = res.page
	}
	p.page = res.page
	p.rows = res.rows
	pagination.RecordPageLoad(string(category), false)
	p.startPrefetchLocked(epochCtx, pages, category, userID, res.page, res.cursors)
	return p.snapshotLocked(), nil
}

type loadResult struct {
	rows    []Row
	cursors []pagination.Cursor
	page    int
	clamped bool
}

func (p *Pager) load(ctx context.Context, category entity.Category, userID string, cursors []pagination.Cursor, n int) (loadResult, error) {
	res := loadResult{cursors: cursors, page: n}
	if !category.RequiresEnumeration() {
		ext, err := p.builder.Extend(ctx, category, userID, cursors, n, p.cfg.PageSize, boostAfter)
		res.cursors = ext
		if err != nil {
			return res, err
		}
	}
	if realPages := pagination.PagesFromCursors(len(res.cursors)); res.page > realPages {
		res.page, res.clamped = realPages, true
	}

	var from *pagination.Cursor
	if i := pagination.StartCursorIndex(res.page); i >= 0 && i < len(res.cursors) {
		from = &res.cursors[i]
	}
	rows, err := p.materializer.MaterializePage(ctx, category, userID, from, p.cfg.PageSize)
	if err != nil {
		return res, err
	}
	res.rows = rows
	return res, nil
}

// mergeCursorsLocked adopts chain when it extends the current one. Chains
// built by continuation within one selection are prefixes of each other.
func (p *Pager) mergeCursorsLocked(chain []pagination.Cursor) {
	if len(chain) > len(p.cursors) {
		p.cursors = chain
	}
}

func (p *Pager) startPrefetchLocked(ctx context.Context, pages *pageCache, category entity.Category, userID string, from int, cursors []pagination.Cursor) {
	if p.closed || p.cfg.PrefetchDepth <= 0 {
		return
	}
	epoch := p.epoch
	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		p.prefetch(ctx, epoch, pages, category, userID, from, cursors)
	}()
}

// prefetch builds cursors for the pages after from with boosted batches and
// materializes the ones not cached yet. Errors end the prefetch silently.
func (p *Pager) prefetch(ctx context.Context, epoch uint64, pages *pageCache, category entity.Category, userID string, from int, cursors []pagination.Cursor) {
	depth := p.cfg.PrefetchDepth
	logger := p.logger.With(slog.String("user_id", userID), slog.String("category", string(category)))

	if !category.RequiresEnumeration() {
		ext, err := p.builder.Extend(ctx, category, userID, cursors, from+depth, p.cfg.PageSize, 0)
		if err != nil {
			pagination.RecordPrefetch("error")
			logger.Debug("prefetch cursor build failed", slog.Any("error", err))
			return
		}
		cursors = ext
		p.mu.Lock()
		if p.epoch == epoch {
			p.mergeCursorsLocked(cursors)
		}
		p.mu.Unlock()
	}

	for i := 1; i <= depth; i++ {
		target := from + i
		key := pageKey{UserID: userID, Category: category, Page: target}
		if pages.has(key) {
			pagination.RecordPrefetch("cached")
			continue
		}
		if target > pagination.PagesFromCursors(len(cursors)) {
			pagination.RecordPrefetch("skipped")
			return
		}
		start := cursors[pagination.StartCursorIndex(target)]
		rows, err := p.materializer.MaterializePage(ctx, category, userID, &start, p.cfg.PageSize)
		if err != nil {
			pagination.RecordPrefetch("error")
			logger.Debug("prefetch page failed", slog.Int("page", target), slog.Any("error", err))
			return
		}
		if ctx.Err() != nil {
			pagination.RecordStaleDiscard("prefetch")
			return
		}
		pages.put(key, rows)
		pagination.RecordPrefetch("stored")
	}
}

// State returns a snapshot of the pager.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pager) snapshotLocked() State {
	s := State{
		UserID:      p.userID,
		Category:    p.category,
		PostType:    p.postType,
		Phase:       p.phase,
		Page:        p.page,
		PageSize:    p.cfg.PageSize,
		TotalPages:  p.totalPages,
		Rows:        slices.Clone(p.rows),
		Loading:     p.loading,
		CursorReady: p.cursorReady,
		Cursors:     len(p.cursors),
	}
	if s.Rows == nil {
		s.Rows = []Row{}
	}
	if n := len(p.cursors); n > 0 {
		s.LastCursor = p.cursors[n-1].Encode()
	}
	return s
}

// Resolver returns the session's batch resolver.
func (p *Pager) Resolver() *Resolver { return p.resolver }

// Wait blocks until background prefetches have finished.
func (p *Pager) Wait() { p.bg.Wait() }

// Close cancels all in-flight work of the pager and waits for background
// prefetches to return. Closed pagers reject further calls.
func (p *Pager) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.loads.stop()
	p.epochs.stop()
	p.mu.Unlock()
	p.closeRoot()
	p.bg.Wait()
}
