package recorder

import (
	"stockpiler/internal/alert"
	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

// Recorder persists scoring runs, backtest investments, and emitted alerts
// for later analysis.
type Recorder interface {
	RecordScores(results []model.ScoreResult) error
	RecordInvestments(runID string, investments []backtest.Investment) error
	RecordAlerts(alerts []alert.Alert) error
	Close() error
}
