// Package postgres provides the PostgreSQL implementation of the document
// store. Documents live in one table with their fields in a JSONB column.
package postgres

import (
	"fmt"
	"strings"

	"activity-feed/internal/repository"
)

// DocumentQueryBuilder builds WHERE clauses for document scans in PostgreSQL.
// The same clause is shared between COUNT and SELECT queries.
// It uses numbered placeholders ($1, $2, etc.) and passes JSON field names as
// parameters to the ->> operator.
type DocumentQueryBuilder struct{}

// NewDocumentQueryBuilder creates a new query builder instance.
func NewDocumentQueryBuilder() *DocumentQueryBuilder {
	return &DocumentQueryBuilder{}
}

// BuildWhereClause returns the WHERE clause selecting documents in scope of q,
// matching its filters and, when withCursor is set, strictly after its
// start cursor in canonical order.
func (qb *DocumentQueryBuilder) BuildWhereClause(q repository.Query, withCursor bool) (clause string, args []any) {
	conditions := []string{"collection = $1"}
	args = []any{q.Collection}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case q.Group:
		conditions = append(conditions, "parent_id <> ''")
	case q.Parent != nil:
		conditions = append(conditions,
			"parent_collection = "+next(q.Parent.Collection),
			"parent_id = "+next(q.Parent.ID))
	default:
		conditions = append(conditions, "parent_id = ''")
	}

	for _, f := range q.Filters {
		field := next(f.Field)
		conditions = append(conditions, fmt.Sprintf("data->>%s = %s", field, next(f.Value)))
	}

	if withCursor && q.StartAfter != nil {
		c := q.StartAfter
		conditions = append(conditions, fmt.Sprintf("(created_at, id, parent_id) < (%s, %s, %s)",
			next(c.CreatedAt), next(c.ID), next(c.ParentID)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// BuildIDSetClause returns the WHERE clause selecting root documents of
// collection by id.
func (qb *DocumentQueryBuilder) BuildIDSetClause(collection string, ids []string) (clause string, args []any) {
	args = make([]any, 0, len(ids)+1)
	args = append(args, collection)
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}
	return "WHERE collection = $1 AND parent_id = '' AND id IN (" + strings.Join(placeholders, ", ") + ")", args
}
