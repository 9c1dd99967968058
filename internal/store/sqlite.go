package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"tradelab/internal/optimize"
)

// ResultStore persists optimization runs and their ranked results in a
// SQLite database.
type ResultStore struct {
	db *sql.DB
}

// Run is one recorded optimization run.
type Run struct {
	ID            int64
	Strategy      string
	Ranges        string
	Objective     string
	Folds         int
	OOSFrac       float64
	MinTrades     int
	UniverseLimit int
	StartedAt     time.Time
	FinishedAt    time.Time
}

const resultSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy       TEXT NOT NULL,
	ranges         TEXT NOT NULL,
	objective      TEXT NOT NULL,
	folds          INTEGER NOT NULL,
	oos_frac       REAL NOT NULL,
	min_trades     INTEGER NOT NULL,
	universe_limit INTEGER NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id       INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank         INTEGER NOT NULL,
	params       TEXT NOT NULL,
	score        REAL NOT NULL,
	sharpe       REAL NOT NULL,
	cagr_pct     REAL NOT NULL,
	max_dd_pct   REAL NOT NULL,
	win_rate_pct REAL NOT NULL,
	trades       INTEGER NOT NULL,
	universe     INTEGER NOT NULL,
	folds        INTEGER NOT NULL,
	PRIMARY KEY (run_id, rank)
);
`

// NewResultStore opens (or creates) the SQLite database at dbPath and
// ensures the schema exists.
func NewResultStore(dbPath string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(resultSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &ResultStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

// SaveRun records one finished run and its ranked results in a single
// transaction, returning the new run ID.
func (s *ResultStore) SaveRun(ctx context.Context, run Run, results []optimize.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (strategy, ranges, objective, folds, oos_frac, min_trades, universe_limit, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Strategy, run.Ranges, run.Objective, run.Folds, run.OOSFrac,
		run.MinTrades, run.UniverseLimit,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, rank, params, score, sharpe, cagr_pct, max_dd_pct, win_rate_pct, trades, universe, folds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, r.Rank, r.Params, r.Score,
			r.Sharpe, r.CAGRPct, r.MaxDDPct, r.WinRatePct, r.Trades,
			r.Universe, r.Folds); err != nil {
			return 0, fmt.Errorf("inserting result rank %d: %w", r.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns all recorded runs, most recent first.
func (s *ResultStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, ranges, objective, folds, oos_frac, min_trades, universe_limit, started_at, finished_at
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Strategy, &r.Ranges, &r.Objective,
			&r.Folds, &r.OOSFrac, &r.MinTrades, &r.UniverseLimit,
			&started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetResults returns the ranked results of one run in rank order.
func (s *ResultStore) GetResults(ctx context.Context, runID int64) ([]optimize.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, params, score, sharpe, cagr_pct, max_dd_pct, win_rate_pct, trades, universe, folds
		FROM results WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []optimize.Result
	for rows.Next() {
		var r optimize.Result
		if err := rows.Scan(&r.Rank, &r.Params, &r.Score, &r.Sharpe,
			&r.CAGRPct, &r.MaxDDPct, &r.WinRatePct, &r.Trades,
			&r.Universe, &r.Folds); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
