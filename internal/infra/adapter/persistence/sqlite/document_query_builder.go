// Package sqlite provides the SQLite implementation of the document store,
// used for local development and single-node deployments.
package sqlite

import (
	"strings"

	"activity-feed/internal/repository"
)

// DocumentQueryBuilder builds WHERE clauses for document scans in SQLite.
// It uses positional ? placeholders. Fields are read with json_extract and
// timestamps are stored as unix nanoseconds.
type DocumentQueryBuilder struct{}

// NewDocumentQueryBuilder creates a new query builder instance.
func NewDocumentQueryBuilder() *DocumentQueryBuilder {
	return &DocumentQueryBuilder{}
}

// BuildWhereClause returns the WHERE clause selecting documents in scope of q.
func (qb *DocumentQueryBuilder) BuildWhereClause(q repository.Query, withCursor bool) (clause string, args []any) {
	conditions := []string{"collection = ?"}
	args = []any{q.Collection}

	switch {
	case q.Group:
		conditions = append(conditions, "parent_id <> ''")
	case q.Parent != nil:
		conditions = append(conditions, "parent_collection = ?", "parent_id = ?")
		args = append(args, q.Parent.Collection, q.Parent.ID)
	default:
		conditions = append(conditions, "parent_id = ''")
	}

	for _, f := range q.Filters {
		conditions = append(conditions, "json_extract(data, ?) = ?")
		args = append(args, "$."+f.Field, f.Value)
	}

	if withCursor && q.StartAfter != nil {
		c := q.StartAfter
		conditions = append(conditions, "(created_at, id, parent_id) < (?, ?, ?)")
		args = append(args, c.CreatedAt.UnixNano(), c.ID, c.ParentID)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// BuildIDSetClause returns the WHERE clause selecting root documents by id.
func (qb *DocumentQueryBuilder) BuildIDSetClause(collection string, ids []string) (clause string, args []any) {
	args = make([]any, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	return "WHERE collection = ? AND parent_id = '' AND id IN (" + placeholders + ")", args
}
