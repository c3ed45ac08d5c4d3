package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"stockpiler/internal/alert"
	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS score_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			ticker        TEXT NOT NULL,
			market        TEXT NOT NULL,
			score         REAL,
			current_price REAL,
			as_of         TEXT,
			data_points   INTEGER,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_ts ON score_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS investments (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL,
			date    TEXT NOT NULL,
			ticker  TEXT NOT NULL,
			market  TEXT NOT NULL,
			shares  REAL,
			price   REAL,
			amount  REAL,
			score   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_investments_run ON investments(run_id)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_id       TEXT NOT NULL,
			alert_date     TEXT NOT NULL,
			ticker         TEXT NOT NULL,
			market         TEXT NOT NULL,
			action         TEXT,
			price          REAL,
			shares         REAL,
			amount         REAL,
			allocation_pct REAL,
			score          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_date ON alerts(alert_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScores(results []model.ScoreResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	for _, res := range results {
		_, err := r.db.Exec(`INSERT INTO score_snapshots
			(timestamp, ticker, market, score, current_price, as_of, data_points, error)
			VALUES (?,?,?,?,?,?,?,?)`,
			now, res.Ticker, res.Market, res.Score, res.CurrentPrice,
			res.AsOf.Format("2006-01-02"), res.DataPoints, res.Err,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordInvestments(runID string, investments []backtest.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range investments {
		_, err := r.db.Exec(`INSERT INTO investments
			(run_id, date, ticker, market, shares, price, amount, score)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, inv.Date.Format("2006-01-02"), inv.Ticker, inv.Market,
			inv.Shares, inv.Price, inv.Amount, inv.Score,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAlerts(alerts []alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range alerts {
		_, err := r.db.Exec(`INSERT INTO alerts
			(alert_id, alert_date, ticker, market, action, price, shares, amount, allocation_pct, score)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			a.ID, a.AlertDate.Format("2006-01-02"), a.Ticker, a.Market,
			a.Action, a.Price, a.Shares, a.Amount, a.AllocationPct, a.Score,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
