// Package storage persists reconciliation run history to SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for run records.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the database at dbPath and applies any
// pending migrations.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun saves or updates a reconciliation run record.
func (s *Storage) SaveRun(run *ReconcileRun) error {
	query := `
	INSERT OR REPLACE INTO reconcile_runs
	(id, started_at, finished_at, status, dry_run,
	 invoices_considered, payments_considered, matches,
	 invoices_dropped, payments_dropped, files_moved, files_missing,
	 error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Status,
		run.DryRun,
		run.InvoicesConsidered,
		run.PaymentsConsidered,
		run.Matches,
		run.InvoicesDropped,
		run.PaymentsDropped,
		run.FilesMoved,
		run.FilesMissing,
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Storage) GetRun(id string) (*ReconcileRun, error) {
	row := s.db.QueryRow(`
	SELECT id, started_at, finished_at, status, dry_run,
	       invoices_considered, payments_considered, matches,
	       invoices_dropped, payments_dropped, files_moved, files_missing,
	       error_message
	FROM reconcile_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]*ReconcileRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
	SELECT id, started_at, finished_at, status, dry_run,
	       invoices_considered, payments_considered, matches,
	       invoices_dropped, payments_dropped, files_moved, files_missing,
	       error_message
	FROM reconcile_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*ReconcileRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetStats returns aggregate statistics over all runs.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	var lastRun sql.NullString
	err := s.db.QueryRow(`
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status != ? THEN matches ELSE 0 END), 0),
	       MAX(started_at)
	FROM reconcile_runs`,
		StatusSuccess, StatusFailed, StatusDryRun, StatusDryRun).Scan(
		&stats.TotalRuns,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.DryRunCount,
		&stats.TotalMatches,
		&lastRun,
	)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	if lastRun.Valid {
		if t, err := time.Parse(time.RFC3339, lastRun.String); err == nil {
			stats.LastRunAt = t
		}
	}
	return stats, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*ReconcileRun, error) {
	var run ReconcileRun
	var startedAt, finishedAt string

	err := sc.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Status,
		&run.DryRun,
		&run.InvoicesConsidered,
		&run.PaymentsConsidered,
		&run.Matches,
		&run.InvoicesDropped,
		&run.PaymentsDropped,
		&run.FilesMoved,
		&run.FilesMissing,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, finishedAt); err == nil {
		run.FinishedAt = t
	}
	return &run, nil
}
