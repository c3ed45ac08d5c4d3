package recorder

import (
	"stockpiler/internal/alert"
	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScores(_ []model.ScoreResult) error                  { return nil }
func (n *NoopRecorder) RecordInvestments(_ string, _ []backtest.Investment) error { return nil }
func (n *NoopRecorder) RecordAlerts(_ []alert.Alert) error                        { return nil }
func (n *NoopRecorder) Close() error                                              { return nil }
