// Package sqlite is the local durable store: the call log, statistic
// snapshots, daily rollups and the sync checkpoint.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register sqlite driver
)

// Store wraps the SQLite connection.
type Store struct {
	db    *sql.DB
	path  string
	nowFn func() time.Time
}

// Open creates the database file and its directory if needed and brings the
// schema up to date.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; transactions never share the handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  path,
		nowFn: func() time.Time { return time.Now().UTC() },
	}

	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PingContext lets the store double as a health check.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS call_log (
	id          TEXT PRIMARY KEY,
	number      TEXT NOT NULL,
	type        TEXT NOT NULL,
	timestamp   INTEGER NOT NULL,
	duration    INTEGER NOT NULL DEFAULT 0,
	cached_name TEXT NOT NULL DEFAULT '',
	ingested_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_call_log_timestamp ON call_log(timestamp);

CREATE TABLE IF NOT EXISTS caller_stats (
	key              TEXT PRIMARY KEY,
	number           TEXT NOT NULL,
	name             TEXT NOT NULL,
	name_source      TEXT NOT NULL,
	identity_id      TEXT NOT NULL DEFAULT '',
	photo_uri        TEXT NOT NULL DEFAULT '',
	total_calls      INTEGER NOT NULL,
	incoming_calls   INTEGER NOT NULL,
	outgoing_calls   INTEGER NOT NULL,
	missed_calls     INTEGER NOT NULL,
	voicemail_calls  INTEGER NOT NULL,
	rejected_calls   INTEGER NOT NULL,
	total_duration   INTEGER NOT NULL,
	average_duration TEXT NOT NULL,
	first_call       INTEGER NOT NULL,
	last_call        INTEGER NOT NULL,
	rank_by_count    INTEGER NOT NULL,
	rank_by_duration INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_caller_stats_rank ON caller_stats(rank_by_count);

CREATE TABLE IF NOT EXISTS daily_rollups (
	date             TEXT PRIMARY KEY,
	total_calls      INTEGER NOT NULL,
	total_duration   INTEGER NOT NULL,
	incoming_calls   INTEGER NOT NULL,
	outgoing_calls   INTEGER NOT NULL,
	missed_calls     INTEGER NOT NULL,
	distinct_callers INTEGER NOT NULL,
	average_duration TEXT NOT NULL,
	updated_at       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`
