package model

// Allocation describes how much of one period's budget goes to one ticker.
// AllocationAmount is the nominal (pre-rounding) dollar figure; ActualAmount
// is recomputed from the rounded share count and may drift slightly from it.
type Allocation struct {
	Ticker           string          `json:"ticker"`
	Market           string          `json:"market"`
	Score            float64         `json:"score"`
	CurrentPrice     float64         `json:"current_price"`
	AllocationPct    float64         `json:"allocation_pct"`
	AllocationAmount float64         `json:"allocation_amount"`
	Shares           float64         `json:"shares"`
	ActualAmount     float64         `json:"actual_amount"`
	Components       ScoreComponents `json:"components,omitempty"`
}

// Key returns the "TICKER_MARKET" identifier.
func (a *Allocation) Key() string {
	return a.Ticker + "_" + a.Market
}
