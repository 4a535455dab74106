// Package store persists reconciliation run reports in a local SQLite
// database so past runs can be listed and inspected after the fact.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dialoggauge/catalogsync/pkg/errors"
	"github.com/dialoggauge/catalogsync/pkg/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	total_created  INTEGER NOT NULL DEFAULT 0,
	total_updated  INTEGER NOT NULL DEFAULT 0,
	total_archived INTEGER NOT NULL DEFAULT 0,
	total_errors   INTEGER NOT NULL DEFAULT 0,
	per_type       TEXT NOT NULL DEFAULT '{}',
	triggered_by   TEXT NOT NULL DEFAULT 'manual'
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Store is a SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the run history database at path and applies
// pragmas and the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapStore("create database directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapStore("open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.WrapStore("apply pragma", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.WrapStore("apply schema", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRecord pairs a persisted report with what triggered the run.
type RunRecord struct {
	*ledger.Report
	TriggeredBy string `json:"triggered_by"`
}

// SaveReport inserts a finalized run report. Saving the same run id
// twice replaces the earlier row.
func (s *Store) SaveReport(ctx context.Context, report *ledger.Report, triggeredBy string) error {
	if report == nil {
		return &errors.ValidationError{Field: "report", Message: "cannot be nil"}
	}
	if triggeredBy == "" {
		triggeredBy = "manual"
	}

	perType, err := json.Marshal(report.PerType)
	if err != nil {
		return errors.WrapStore("encode per-type outcomes", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, status, started_at, finished_at,
			total_created, total_updated, total_archived, total_errors,
			per_type, triggered_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		string(report.Status),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		report.TotalCreated,
		report.TotalUpdated,
		report.TotalArchived,
		report.TotalErrors,
		string(perType),
		triggeredBy,
	)
	if err != nil {
		return errors.WrapStore("insert run", err)
	}
	return nil
}

// GetRun loads a single run report by id. Returns ErrNotFound when no
// run with that id exists.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, status, started_at, finished_at,
		       total_created, total_updated, total_archived, total_errors,
		       per_type, triggered_by
		FROM runs WHERE run_id = ?`, runID)

	report, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapStore("load run", err)
	}
	return report, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// or less means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `
		SELECT run_id, status, started_at, finished_at,
		       total_created, total_updated, total_archived, total_errors,
		       per_type, triggered_by
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapStore("list runs", err)
	}
	defer rows.Close()

	var reports []*RunRecord
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, errors.WrapStore("scan run", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStore("list runs", err)
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		report              ledger.Report
		record              RunRecord
		status              string
		startedAt, finished string
		perType             string
	)
	err := row.Scan(
		&report.RunID, &status, &startedAt, &finished,
		&report.TotalCreated, &report.TotalUpdated,
		&report.TotalArchived, &report.TotalErrors,
		&perType, &record.TriggeredBy,
	)
	if err != nil {
		return nil, err
	}

	report.Status = ledger.Status(status)
	if report.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, err
	}
	if report.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, err
	}
	report.Duration = report.FinishedAt.Sub(report.StartedAt)

	if err := json.Unmarshal([]byte(perType), &report.PerType); err != nil {
		return nil, err
	}
	record.Report = &report
	return &record, nil
}
