package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL per driver. Root documents store '' as their parent.
var schema = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS documents (
    collection        TEXT NOT NULL,
    id                TEXT NOT NULL,
    parent_collection TEXT NOT NULL DEFAULT '',
    parent_id         TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL,
    data              JSONB NOT NULL DEFAULT '{}'::jsonb,
    PRIMARY KEY (collection, parent_collection, parent_id, id)
)`,
		// Canonical scan order for every range query.
		`CREATE INDEX IF NOT EXISTS idx_documents_scan ON documents(collection, created_at DESC, id DESC, parent_id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(collection, parent_collection, parent_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_author ON documents((data->>'authorId')) WHERE data ? 'authorId'`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS documents (
    collection        TEXT NOT NULL,
    id                TEXT NOT NULL,
    parent_collection TEXT NOT NULL DEFAULT '',
    parent_id         TEXT NOT NULL DEFAULT '',
    created_at        INTEGER NOT NULL,
    data              TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (collection, parent_collection, parent_id, id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_scan ON documents(collection, created_at DESC, id DESC, parent_id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(collection, parent_collection, parent_id, created_at DESC)`,
	},
}

// MigrateUp creates the documents table and its indexes for driver.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schema[driver]
	if !ok {
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	return nil
}

// MigrateDown drops the documents table. All stored documents are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS documents`); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}
