// Package sqlite provides SQLite-based storage implementations for cookbook services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	// This also keeps every caller on the same in-memory database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// PingContext verifies the connection is alive.
func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL COLLATE NOCASE,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (owner_id, name)
		);

		CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			ingredients TEXT NOT NULL DEFAULT '[]',
			steps TEXT NOT NULL DEFAULT '[]',
			image TEXT,
			cuisine TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL REFERENCES categories(id),
			category_source TEXT NOT NULL,
			category_confidence REAL NOT NULL DEFAULT 0,
			prep_time TEXT NOT NULL DEFAULT '',
			cleanup_time TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recipes_owner_id ON recipes(owner_id);
		CREATE INDEX IF NOT EXISTS idx_recipes_category_id ON recipes(category_id);

		CREATE TABLE IF NOT EXISTS extraction_metrics (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			recipe_url TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			primary_strategy TEXT NOT NULL,
			final_strategy TEXT NOT NULL DEFAULT '',
			ai_provider TEXT NOT NULL DEFAULT '',
			fallback_used INTEGER NOT NULL DEFAULT 0,
			fallback_reason TEXT NOT NULL DEFAULT '',
			total_duration_ms INTEGER NOT NULL DEFAULT 0,
			fetch_duration_ms INTEGER NOT NULL DEFAULT 0,
			ai_duration_ms INTEGER NOT NULL DEFAULT 0,
			validation_duration_ms INTEGER NOT NULL DEFAULT 0,
			html_content_size INTEGER NOT NULL DEFAULT 0,
			cleaned_content_size INTEGER NOT NULL DEFAULT 0,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			response_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			failure_reason TEXT NOT NULL DEFAULT '',
			missing_fields TEXT NOT NULL DEFAULT '[]',
			completeness_score REAL NOT NULL DEFAULT 0,
			category_confidence REAL NOT NULL DEFAULT 0,
			has_structured_data INTEGER NOT NULL DEFAULT 0,
			estimated_cost REAL NOT NULL DEFAULT 0,
			recipe_id TEXT NOT NULL DEFAULT '',
			was_optimal INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_extraction_metrics_domain ON extraction_metrics(domain);
		CREATE INDEX IF NOT EXISTS idx_extraction_metrics_user_id ON extraction_metrics(user_id);
		CREATE INDEX IF NOT EXISTS idx_extraction_metrics_created_at ON extraction_metrics(created_at);
	`

	_, err := db.db.Exec(schema)
	return err
}
