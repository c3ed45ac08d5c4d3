package model

import "time"

// ScoreComponents maps component names (e.g. "price_position") to values in
// [0,1]. The weighted result is stored under "final_score".
type ScoreComponents map[string]float64

// ScoreResult is the outcome of scoring one ticker at one as-of date.
// Err carries the reason when scoring could not run; a zero Score with an
// empty Err is a genuine "no opportunity" result and must stay
// distinguishable from a failed one.
type ScoreResult struct {
	Ticker       string          `json:"ticker"`
	Market       string          `json:"market"`
	Score        float64         `json:"score"`
	Components   ScoreComponents `json:"components"`
	CurrentPrice float64         `json:"current_price"`
	AsOf         time.Time       `json:"date"`
	DataPoints   int             `json:"data_points"`
	Err          string          `json:"error,omitempty"`
}

// Key returns the "TICKER_MARKET" identifier.
func (r *ScoreResult) Key() string {
	return r.Ticker + "_" + r.Market
}

// Valid reports whether the result can participate in allocation.
func (r *ScoreResult) Valid() bool {
	return r.Err == "" && r.Score > 0 && r.CurrentPrice > 0
}
