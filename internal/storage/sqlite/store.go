// Package sqlite implements a SQLite-backed storage.Store using database/sql.
// Word counts are written with batched INSERTs inside a single transaction;
// SQLite has no dedicated bulk-load API like Postgres COPY, but one
// transaction per run keeps performance acceptable for large word tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wordfreq/internal/storage"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS word_runs (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  root          TEXT    NOT NULL,
  started_at    TEXT    NOT NULL,
  duration_ms   INTEGER NOT NULL,
  files         INTEGER NOT NULL,
  bytes         INTEGER NOT NULL,
  dropped_words INTEGER NOT NULL,
  unique_words  INTEGER NOT NULL,
  digest        TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS word_counts (
  run_id INTEGER NOT NULL REFERENCES word_runs(id) ON DELETE CASCADE,
  word   TEXT    NOT NULL,
  count  INTEGER NOT NULL,
  PRIMARY KEY (run_id, word)
);
`

// Store is a SQLite-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database from the given DSN and ensures the run schema
// exists.
//
// The "sqlite://" scheme prefix is stripped; the remainder is passed directly
// to database/sql, for example:
//
//	"sqlite://wordfreq.db"
//	"sqlite://:memory:"
//	"sqlite://file:wordfreq.db?cache=shared"
func New(ctx context.Context, dsn string) (*Store, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Enable foreign keys by default; ignore error if driver doesn't support it.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveRun inserts the run header and every word count inside one transaction
// using a prepared INSERT statement.
func (s *Store) SaveRun(ctx context.Context, run storage.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO word_runs (root, started_at, duration_ms, files, bytes, dropped_words, unique_words, digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Root,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Files,
		run.Bytes,
		run.DroppedWords,
		int64(len(run.Entries)),
		fmt.Sprintf("%016x", run.Digest),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO word_counts (run_id, word, count) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range run.Entries {
		if _, err := stmt.ExecContext(ctx, runID, e.Word, e.Count); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert count for %q: %w", e.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close implements storage.Store.Close.
func (s *Store) Close() {
	_ = s.db.Close()
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, dsn string) (storage.Store, error) {
		st, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	})
}
