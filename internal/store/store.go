// Package store provides a SQLite-backed request history store for the
// analyst service. Every completed operation (Q&A, summarization, extraction,
// routed query) is recorded so operators can audit what was asked and how
// confident the answers were. History survives server restarts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Operation identifies which analyst capability served a request.
type Operation string

const (
	// OpQA is a retrieval-augmented question answering request.
	OpQA Operation = "qa"
	// OpSummarize is a document summarization request.
	OpSummarize Operation = "summarize"
	// OpExtract is a structured data extraction request.
	OpExtract Operation = "extract"
	// OpRoute is an auto-routed request; Tool records where it landed.
	OpRoute Operation = "route"
)

// Record is a single persisted request.
type Record struct {
	// Operation is the capability that served the request.
	Operation Operation
	// Query is the user's question or query text. Empty for operations
	// that take no free text, such as extraction.
	Query string
	// Tool is the tool a routed request was dispatched to. Empty for
	// direct (non-routed) requests.
	Tool string
	// Confidence is the confidence score of the response, when the
	// operation produces one. Zero otherwise.
	Confidence float64
	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// HistoryStore persists and retrieves request history. Implementations must
// be safe for concurrent use.
type HistoryStore interface {
	// Append persists a single request record.
	Append(ctx context.Context, rec Record) error
	// Recent returns the most recent n records, newest-first. If fewer
	// than n records exist, all are returned.
	Recent(ctx context.Context, n int) ([]Record, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a HistoryStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the request history database.
// It resolves to ~/.analyst/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".analyst")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS requests (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    operation    TEXT    NOT NULL CHECK(operation IN ('qa','summarize','extract','route')),
    query        TEXT    NOT NULL,
    tool         TEXT    NOT NULL DEFAULT '',
    confidence   REAL    NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_requests_created
    ON requests (created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists a single request record. A zero CreatedAt is replaced with
// the current time.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	ts := rec.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	const q = `INSERT INTO requests (operation, query, tool, confidence, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, string(rec.Operation), rec.Query, rec.Tool, rec.Confidence, ts.Unix()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n records, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Record, error) {
	const q = `
SELECT operation, query, tool, confidence, created_at
FROM   requests
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var ts int64
		var op string
		if err := rows.Scan(&op, &rec.Query, &rec.Tool, &rec.Confidence, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		rec.Operation = Operation(op)
		rec.CreatedAt = time.Unix(ts, 0)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return recs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
