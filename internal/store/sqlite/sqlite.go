// Package sqlite implements core.Store on a local SQLite file using the
// pure-Go modernc.org/sqlite driver. It serves single-node installs and the
// import CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

const dateLayout = "2006-01-02"

// Store is a core.Store backed by one SQLite database file.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragmas below in effect for every statement
	// and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			client TEXT NOT NULL,
			task_category TEXT NOT NULL,
			sub_category TEXT NOT NULL,
			status TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			assignee_name TEXT NOT NULL DEFAULT '',
			captain_name TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL,
			assignment_date TEXT NOT NULL,
			completion_date TEXT NOT NULL,
			bill INTEGER NOT NULL DEFAULT 0 CHECK (bill >= 0),
			advance_received INTEGER NOT NULL DEFAULT 0 CHECK (advance_received >= 0),
			outstanding_amount INTEGER NOT NULL DEFAULT 0 CHECK (outstanding_amount >= 0),
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE TABLE IF NOT EXISTS reference_values (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			parent TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reference_unique
			ON reference_values(kind, lower(parent), lower(name));`,
		`CREATE TABLE IF NOT EXISTS assignees (
			assignee_name TEXT PRIMARY KEY,
			captain_name TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS import_batches (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			file_name TEXT NOT NULL,
			status TEXT NOT NULL,
			valid_rows INTEGER NOT NULL DEFAULT 0,
			written_rows INTEGER NOT NULL DEFAULT 0,
			row_errors INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			ip_address TEXT,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_import_batches_created ON import_batches(created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	_ = s.db.Close()
}

func nowMS() int64 { return time.Now().UnixMilli() }

func fromUnixMS(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func formatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.EpochZero
	}
	return t
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapError translates driver errors into core sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", core.ErrDuplicate, sqliteErr.Error())
		}
	}
	return err
}
