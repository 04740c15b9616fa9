// Package store persists comparison run history in SQLite, so curation
// sessions can be compared across mapping-file edits.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ceda-group/align-cli/internal/compare"
)

// Store wraps a SQLite database via modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database and configures WAL mode.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS comparison_runs (
	id           TEXT PRIMARY KEY,
	method       TEXT NOT NULL,
	mapping_path TEXT NOT NULL,
	total        INTEGER NOT NULL,
	succeeded    INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS comparison_rows (
	run_id           TEXT NOT NULL REFERENCES comparison_runs(id),
	fbs_slice        TEXT NOT NULL,
	emissions_source TEXT NOT NULL,
	gas              TEXT NOT NULL,
	fbs_total        REAL,
	registry_total   REAL,
	abs_diff         REAL,
	rel_diff         REAL,
	compared         INTEGER NOT NULL,
	reason           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_comparison_runs_started ON comparison_runs(started_at);
CREATE INDEX IF NOT EXISTS idx_comparison_rows_run_id ON comparison_rows(run_id);
`

// Migrate applies the schema; safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunRecord is one recorded batch comparison.
type RunRecord struct {
	ID          string
	Method      string
	MappingPath string
	Total       int
	Succeeded   int
	Failed      int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// RecordRun inserts a run and its rows in one transaction and returns the
// generated run ID.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord, summary compare.Summary) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comparison_runs (id, method, mapping_path, total, succeeded, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Method, rec.MappingPath,
		len(summary.Rows), summary.Succeeded, summary.Failed,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert run")
	}

	for _, row := range summary.Rows {
		var relDiff sql.NullFloat64
		if row.RelDiff != nil {
			relDiff = sql.NullFloat64{Float64: *row.RelDiff, Valid: true}
		}
		var fbsTotal, registryTotal, absDiff sql.NullFloat64
		if row.Compared {
			fbsTotal = sql.NullFloat64{Float64: row.FBSTotal, Valid: true}
			registryTotal = sql.NullFloat64{Float64: row.RegistryTotal, Valid: true}
			absDiff = sql.NullFloat64{Float64: row.AbsDiff, Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO comparison_rows (run_id, fbs_slice, emissions_source, gas, fbs_total, registry_total, abs_diff, rel_diff, compared, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, row.Slice, row.Source, row.Gas,
			fbsTotal, registryTotal, absDiff, relDiff,
			row.Compared, row.Reason,
		)
		if err != nil {
			return "", eris.Wrap(err, "store: insert row")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "store: commit")
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, mapping_path, total, succeeded, failed, started_at, finished_at
		 FROM comparison_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Method, &rec.MappingPath, &rec.Total, &rec.Succeeded, &rec.Failed, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate runs")
}

// RunRows returns the recorded rows of one run in insertion order.
func (s *Store) RunRows(ctx context.Context, runID string) ([]compare.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fbs_slice, emissions_source, gas, fbs_total, registry_total, abs_diff, rel_diff, compared, reason
		 FROM comparison_rows WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: rows for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []compare.Row
	for rows.Next() {
		var row compare.Row
		var fbsTotal, registryTotal, absDiff, relDiff sql.NullFloat64
		if err := rows.Scan(&row.Slice, &row.Source, &row.Gas, &fbsTotal, &registryTotal, &absDiff, &relDiff, &row.Compared, &row.Reason); err != nil {
			return nil, eris.Wrap(err, "store: scan row")
		}
		if fbsTotal.Valid {
			row.FBSTotal = fbsTotal.Float64
		}
		if registryTotal.Valid {
			row.RegistryTotal = registryTotal.Float64
		}
		if absDiff.Valid {
			row.AbsDiff = absDiff.Float64
		}
		if relDiff.Valid {
			rel := relDiff.Float64
			row.RelDiff = &rel
		}
		out = append(out, row)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate rows")
}
