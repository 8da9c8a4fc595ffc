// Package store records pipeline run summaries so scheduled re-runs
// can be audited after the fact.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one pipeline stage execution and its before/after counts.
type Run struct {
	ID         int64
	Stage      string // fetch, train, tag, propagate, merge, pipeline
	Input      string
	Output     string
	Rows       int
	LabeledIn  int
	LabeledOut int
	Filled     int
	Conflicts  int
	Notes      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store wraps the SQLite run-history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run-history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		stage       TEXT NOT NULL,
		input       TEXT NOT NULL DEFAULT '',
		output      TEXT NOT NULL DEFAULT '',
		rows        INTEGER NOT NULL DEFAULT 0,
		labeled_in  INTEGER NOT NULL DEFAULT 0,
		labeled_out INTEGER NOT NULL DEFAULT 0,
		filled      INTEGER NOT NULL DEFAULT 0,
		conflicts   INTEGER NOT NULL DEFAULT 0,
		notes       TEXT NOT NULL DEFAULT '',
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage, started_at);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Record inserts a run summary.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (stage, input, output, rows, labeled_in, labeled_out,
			filled, conflicts, notes, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Stage, r.Input, r.Output, r.Rows, r.LabeledIn, r.LabeledOut,
		r.Filled, r.Conflicts, r.Notes, r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: record run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, stage, input, output, rows, labeled_in, labeled_out,
			filled, conflicts, notes, started_at, finished_at
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Stage, &r.Input, &r.Output, &r.Rows,
			&r.LabeledIn, &r.LabeledOut, &r.Filled, &r.Conflicts, &r.Notes,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
