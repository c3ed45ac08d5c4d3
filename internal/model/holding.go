package model

// Holding is the accumulated position in one ticker. Shares only ever grow
// (no sell modeling); AvgCost is the volume-weighted average purchase price.
type Holding struct {
	Ticker  string  `json:"ticker"`
	Market  string  `json:"market"`
	Shares  float64 `json:"shares"`
	AvgCost float64 `json:"avg_cost"`
}

// AddPurchase folds a new buy into the position:
// newAvg = (oldShares*oldAvg + amount) / (oldShares + shares).
func (h *Holding) AddPurchase(shares, price, amount float64) {
	total := h.Shares + shares
	if total <= 0 {
		h.Shares = shares
		h.AvgCost = price
		return
	}
	h.AvgCost = (h.Shares*h.AvgCost + amount) / total
	h.Shares = total
}

// MarketValue values the position at the given price.
func (h *Holding) MarketValue(price float64) float64 {
	return h.Shares * price
}
