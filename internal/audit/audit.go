// Package audit keeps a local journal of obfuscation runs for the CLI and
// batch layers. Each run records where data came from, where it went, which
// columns were targeted and how many records were touched. The journal
// never stores key material or field values, only column names and counts.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/obfx"
	_ "github.com/mattn/go-sqlite3"
)

// Run outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

const defaultRecentLimit = 20

// Entry is one recorded run.
type Entry struct {
	ID        string
	Source    string
	Target    string
	Format    string
	Fields    []string
	Records   int
	Outcome   string
	Message   string
	CreatedAt time.Time
}

// Journal is a sqlite-backed run journal.
type Journal struct {
	db *sql.DB
}

// Open opens the journal at path, creating the database and its schema on
// first use.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open audit database at '%s': %w", obfx.ErrDatabaseUnavailable, path, err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: audit database connection test failed for '%s': %w", obfx.ErrDatabaseUnavailable, path, err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// initializeSchema creates the required journal schema
func initializeSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			target TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL,
			fields TEXT NOT NULL,
			records INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("%w: failed to create audit schema: %w", obfx.ErrDatabaseUnavailable, err)
	}

	return nil
}

// Record inserts a run entry and returns its ID. An empty Entry.ID gets a
// generated UUID.
func (j *Journal) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, target, format, fields, records, outcome, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Target, e.Format, strings.Join(e.Fields, ","), e.Records, e.Outcome, e.Message,
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to record run '%s': %w", obfx.ErrDatabaseUnavailable, e.ID, err)
	}

	return e.ID, nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// uses the default of 20.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	// rowid preserves insertion order even when created_at timestamps tie.
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, source, target, format, fields, records, outcome, message, created_at
		 FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read runs: %w", obfx.ErrDatabaseUnavailable, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fields string
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Format, &fields, &e.Records, &e.Outcome, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan run: %w", obfx.ErrDatabaseUnavailable, err)
		}
		if fields != "" {
			e.Fields = strings.Split(fields, ",")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read runs: %w", obfx.ErrDatabaseUnavailable, err)
	}

	return entries, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
