package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"activity-feed/internal/domain/entity"
	"activity-feed/internal/repository"
)

const documentColumns = "collection, id, parent_collection, parent_id, created_at, data"

// DocumentRepo implements repository.DocumentStore on PostgreSQL.
type DocumentRepo struct {
	db           *sql.DB
	queryBuilder *DocumentQueryBuilder
}

// NewDocumentRepo creates a PostgreSQL-backed document store.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{
		db:           db,
		queryBuilder: NewDocumentQueryBuilder(),
	}
}

var _ repository.DocumentStore = (*DocumentRepo)(nil)

func (repo *DocumentRepo) QueryRange(ctx context.Context, q repository.Query) ([]entity.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("QueryRange: %w", err)
	}
	where, args := repo.queryBuilder.BuildWhereClause(q, true)
	query := "SELECT " + documentColumns + " FROM documents " + where +
		" ORDER BY created_at DESC, id DESC, parent_id DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("QueryRange: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs, err := scanDocuments(rows, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("QueryRange: %w", err)
	}
	return docs, nil
}

func (repo *DocumentRepo) CountMatching(ctx context.Context, q repository.Query) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("CountMatching: %w", err)
	}
	where, args := repo.queryBuilder.BuildWhereClause(q, false)
	var n int64
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountMatching: %w", err)
	}
	return n, nil
}

func (repo *DocumentRepo) GetByIDSet(ctx context.Context, collection string, ids []string) ([]entity.Document, error) {
	if len(ids) == 0 {
		return []entity.Document{}, nil
	}
	where, args := repo.queryBuilder.BuildIDSetClause(collection, ids)
	rows, err := repo.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("GetByIDSet: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs, err := scanDocuments(rows, len(ids))
	if err != nil {
		return nil, fmt.Errorf("GetByIDSet: %w", err)
	}
	return docs, nil
}

// Put upserts documents. It is used to load seed data.
func (repo *DocumentRepo) Put(ctx context.Context, docs ...entity.Document) error {
	const query = `
INSERT INTO documents (collection, id, parent_collection, parent_id, created_at, data)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (collection, parent_collection, parent_id, id)
DO UPDATE SET created_at = EXCLUDED.created_at, data = EXCLUDED.data`
	for _, d := range docs {
		data := d.Data
		if len(data) == 0 {
			data = json.RawMessage(`{}`)
		}
		if _, err := repo.db.ExecContext(ctx, query,
			d.Collection, d.ID, d.ParentCollection(), d.ParentID(), d.CreatedAt, string(data)); err != nil {
			return fmt.Errorf("Put %s: %w", d.Path(), err)
		}
	}
	return nil
}

func scanDocuments(rows *sql.Rows, capacity int) ([]entity.Document, error) {
	docs := make([]entity.Document, 0, max(capacity, 0))
	for rows.Next() {
		var (
			d                          entity.Document
			parentCollection, parentID string
			data                       []byte
		)
		if err := rows.Scan(&d.Collection, &d.ID, &parentCollection, &parentID, &d.CreatedAt, &data); err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		if parentID != "" {
			d.Parent = &entity.ParentRef{Collection: parentCollection, ID: parentID}
		}
		d.CreatedAt = d.CreatedAt.UTC()
		d.Data = json.RawMessage(data)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
