package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists pipeline runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets `history` read while watch mode writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.WithField("path", dbPath).Debug("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			source          TEXT,
			prompt          TEXT,
			outcome         TEXT,
			symbol          TEXT,
			prediction_days INTEGER,
			input_window    INTEGER,
			max_steps       INTEGER,
			steps_run       INTEGER,
			series_points   INTEGER,
			last_close      REAL,
			validation_mae  REAL,
			baseline_mae    REAL,
			outlook         TEXT,
			reply           TEXT,
			error           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON forecast_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			run_id     TEXT NOT NULL REFERENCES forecast_runs(id),
			day        INTEGER NOT NULL,
			ticker     TEXT,
			date       TEXT,
			prediction REAL,
			PRIMARY KEY (run_id, day)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and, for forecasts, every predicted row in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var window, maxSteps, stepsRun, points int
	var lastClose, valMAE, baseMAE float64
	var outlook string
	if res := run.Result; res != nil {
		window, maxSteps, stepsRun = res.Fit.InputWindow, res.Fit.MaxSteps, res.Fit.StepsRun
		points, lastClose = res.Summary.Points, res.Summary.LastClose
		valMAE, baseMAE = res.Fit.ValidationMAE, res.Fit.BaselineMAE
		if res.Outlook != nil {
			outlook = res.Outlook.Label
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO forecast_runs
		(id, timestamp, source, prompt, outcome, symbol, prediction_days,
		 input_window, max_steps, steps_run, series_points, last_close,
		 validation_mae, baseline_mae, outlook, reply, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Source, run.Prompt, run.Outcome,
		run.Symbol, run.PredictionDays,
		window, maxSteps, stepsRun, points, lastClose,
		valMAE, baseMAE, outlook, run.Reply, run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if run.Result != nil {
		for i, row := range run.Result.Rows {
			if _, err := tx.Exec(`INSERT INTO forecast_points (run_id, day, ticker, date, prediction)
				VALUES (?,?,?,?,?)`,
				run.ID, i+1, row.Ticker, row.Date.Format("2006-01-02"), row.Prediction,
			); err != nil {
				return fmt.Errorf("insert point %d: %w", i+1, err)
			}
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, source, prompt, outcome, symbol,
		prediction_days, validation_mae, outlook, error
		FROM forecast_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Source, &s.Prompt, &s.Outcome, &s.Symbol,
			&s.PredictionDays, &s.ValidationMAE, &s.Outlook, &s.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PredictionsFor returns the stored rows of one run in day order.
func (r *SQLiteRecorder) PredictionsFor(runID string) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT prediction FROM forecast_points WHERE run_id = ? ORDER BY day`, runID)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logrus.Debug("closing sqlite recorder")
	return r.db.Close()
}
