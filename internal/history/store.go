// Package history keeps an optional SQLite record of past scans so that
// results can be compared across runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/namecheck/internal/rules"
	"github.com/harrison/namecheck/internal/walker"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded scan
type Run struct {
	ID            string
	Root          string
	IncludeHidden bool
	StartedAt     time.Time
	Duration      time.Duration
	Entries       int
	WarningCount  int
}

// WarningRecord is one stored warning
type WarningRecord struct {
	Path    string
	Rule    rules.RuleID
	Message string
}

// Store manages the history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewRunID returns a fresh identifier for a scan
func NewRunID() string {
	return uuid.New().String()
}

// NewStore opens (creating if needed) the database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so the remaining pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry retries a statement with exponential backoff while the
// database is locked by another process
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores run and its findings in one transaction.
// An empty run.ID is replaced with a new one.
func (s *Store) RecordRun(ctx context.Context, run *Run, findings []walker.Finding) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	count := 0
	for _, f := range findings {
		count += len(f.Warnings)
	}
	run.WarningCount = count

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, include_hidden, started_at, duration_ms, entries, warning_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.IncludeHidden, run.StartedAt.UTC(), run.Duration.Milliseconds(), run.Entries, run.WarningCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO warnings (run_id, seq, path, rule, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare warning insert: %w", err)
	}
	defer stmt.Close()

	seq := 0
	for _, f := range findings {
		for _, w := range f.Warnings {
			if _, err := stmt.ExecContext(ctx, run.ID, seq, f.Path, string(w.Rule), w.Message); err != nil {
				return fmt.Errorf("insert warning: %w", err)
			}
			seq++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, root, include_hidden, started_at, duration_ms, entries, warning_count
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		if err := rows.Scan(&run.ID, &run.Root, &run.IncludeHidden, &run.StartedAt, &durationMs, &run.Entries, &run.WarningCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunWarnings returns the warnings of one run in their original order
func (s *Store) RunWarnings(ctx context.Context, runID string) ([]WarningRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, rule, message FROM warnings WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var records []WarningRecord
	for rows.Next() {
		var rec WarningRecord
		var rule string
		if err := rows.Scan(&rec.Path, &rule, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		rec.Rule = rules.RuleID(rule)
		records = append(records, rec)
	}
	return records, rows.Err()
}
