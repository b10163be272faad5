package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

const (
	// Connection pool settings. sqlite serializes writers anyway; a small
	// pool with a busy timeout beats contention errors.
	defaultMaxOpenConns = 4
	defaultPingTimeout  = 5 * time.Second
)

// NewSQLiteConnection opens (creating if needed) the trigger database at
// path and applies the schema.
func NewSQLiteConnection(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open trigger database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping trigger database: %w", pingErr)
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS triggers (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type         TEXT NOT NULL,
	source_name         TEXT NOT NULL DEFAULT '',
	title               TEXT NOT NULL DEFAULT '',
	source_url          TEXT NOT NULL DEFAULT '',
	company_name        TEXT NOT NULL DEFAULT '',
	matched_keywords    TEXT NOT NULL DEFAULT '[]',
	trigger_score       INTEGER NOT NULL,
	sentiment_score     REAL NOT NULL DEFAULT 0,
	quantity_signal     REAL NOT NULL DEFAULT 0,
	content_fingerprint TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'active',
	supersedes          INTEGER NOT NULL DEFAULT 0,
	published_at        TIMESTAMP,
	ingested_at         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triggers_fingerprint_status
	ON triggers (content_fingerprint, status);
CREATE INDEX IF NOT EXISTS idx_triggers_status_score
	ON triggers (status, trigger_score DESC);
CREATE INDEX IF NOT EXISTS idx_triggers_company
	ON triggers (company_name);
`

// EnsureSchema creates the triggers table and its indexes if missing.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply trigger schema: %w", err)
	}
	return nil
}
