package activity

import (
	"sync"

	"activity-feed/internal/domain/entity"
)

// pageKey identifies cached rows.
type pageKey struct {
	UserID   string
	Category entity.Category
	Page     int
}

// pageCache holds the rows of pages already materialized for one
// (user, category) selection. A new cache is created on every selection.
type pageCache struct {
	mu   sync.RWMutex
	rows map[pageKey][]Row
}

func newPageCache() *pageCache {
	return &pageCache{rows: make(map[pageKey][]Row)}
}

func (c *pageCache) get(k pageKey) ([]Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows, ok := c.rows[k]
	return rows, ok
}

func (c *pageCache) has(k pageKey) bool {
	_, ok := c.get(k)
	return ok
}

// put stores rows for k. Rows for a key are deterministic, so the first
// write wins and later writes are ignored.
func (c *pageCache) put(k pageKey, rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rows[k]; ok {
		return
	}
	if rows == nil {
		rows = []Row{}
	}
	c.rows[k] = rows
}

func (c *pageCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
