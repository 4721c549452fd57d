package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

var _ i.RunRepo = &SQLiteRunRepo{}

const runSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	operator_id TEXT NOT NULL,
	scenario    TEXT NOT NULL,
	width       INTEGER NOT NULL,
	height      INTEGER NOT NULL,
	ticks       INTEGER NOT NULL,
	total_steps INTEGER NOT NULL,
	reached     INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_outcomes (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	agent_id         TEXT NOT NULL,
	start_x          INTEGER NOT NULL,
	start_y          INTEGER NOT NULL,
	goal_x           INTEGER NOT NULL,
	goal_y           INTEGER NOT NULL,
	final_x          INTEGER NOT NULL,
	final_y          INTEGER NOT NULL,
	status           TEXT NOT NULL,
	steps_taken      INTEGER NOT NULL,
	max_steps        INTEGER NOT NULL,
	initial_distance INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
`

// SQLiteRunRepo stores run reports in a local SQLite file. The CLI uses it
// to keep a history of headless runs without a MongoDB server.
type SQLiteRunRepo struct {
	db *sql.DB
}

// NewSQLiteRunRepo opens (or creates) the database at path. Use ":memory:" for a throwaway store.
func NewSQLiteRunRepo(path string) (*SQLiteRunRepo, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer; this also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), runSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteRunRepo{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRunRepo) Close() error {
	return r.db.Close()
}

// Save inserts or replaces a report with its outcomes.
func (r *SQLiteRunRepo) Save(ctx context.Context, report *dmn.RunReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := report.ID.String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_outcomes WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear outcomes: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, operator_id, scenario, width, height, ticks, total_steps, reached, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.OperatorID.String(), report.Scenario, report.Width, report.Height,
		report.Ticks, report.TotalSteps, report.Reached,
		report.StartedAt.UTC().Format(time.RFC3339Nano), report.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for n, o := range report.Outcomes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_outcomes (run_id, position, agent_id, start_x, start_y, goal_x, goal_y, final_x, final_y, status, steps_taken, max_steps, initial_distance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, n, o.AgentID, o.Start.X, o.Start.Y, o.Goal.X, o.Goal.Y, o.Final.X, o.Final.Y,
			o.Status, o.StepsTaken, o.MaxSteps, o.InitialDistance,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome %s: %w", o.AgentID, err)
		}
	}

	return tx.Commit()
}

// ByID retrieves a report.
func (r *SQLiteRunRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.RunReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, operator_id, scenario, width, height, ticks, total_steps, reached, started_at, finished_at
		FROM runs WHERE id = ?`, id.String())
	report, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dmn.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadOutcomes(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Recent returns up to limit reports, newest first.
func (r *SQLiteRunRepo) Recent(ctx context.Context, limit int64) ([]*dmn.RunReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, operator_id, scenario, width, height, ticks, total_steps, reached, started_at, finished_at
		FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var reports []*dmn.RunReport
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, report := range reports {
		if err := r.loadOutcomes(ctx, report); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*dmn.RunReport, error) {
	var (
		report                dmn.RunReport
		id, operatorID        string
		startedAt, finishedAt string
	)
	err := s.Scan(&id, &operatorID, &report.Scenario, &report.Width, &report.Height,
		&report.Ticks, &report.TotalSteps, &report.Reached, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if report.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	if report.OperatorID, err = uuid.Parse(operatorID); err != nil {
		return nil, fmt.Errorf("corrupt operator id %q: %w", operatorID, err)
	}
	if report.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("corrupt start time %q: %w", startedAt, err)
	}
	if report.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("corrupt finish time %q: %w", finishedAt, err)
	}
	return &report, nil
}

func (r *SQLiteRunRepo) loadOutcomes(ctx context.Context, report *dmn.RunReport) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT agent_id, start_x, start_y, goal_x, goal_y, final_x, final_y, status, steps_taken, max_steps, initial_distance
		FROM run_outcomes WHERE run_id = ? ORDER BY position`, report.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load outcomes: %w", err)
	}
	defer rows.Close()

	report.Outcomes = []dmn.AgentOutcome{}
	for rows.Next() {
		var o dmn.AgentOutcome
		if err := rows.Scan(&o.AgentID, &o.Start.X, &o.Start.Y, &o.Goal.X, &o.Goal.Y, &o.Final.X, &o.Final.Y,
			&o.Status, &o.StepsTaken, &o.MaxSteps, &o.InitialDistance); err != nil {
			return fmt.Errorf("failed to scan outcome: %w", err)
		}
		report.Outcomes = append(report.Outcomes, o)
	}
	return rows.Err()
}
