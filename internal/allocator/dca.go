package allocator

import "stockpiler/internal/model"

// DCAResult is the outcome of an equal-weight dollar-cost-averaging split,
// the baseline the score-driven strategy is measured against.
type DCAResult struct {
	Allocations []model.Allocation `json:"allocations"`
	TotalAmount float64            `json:"total_amount"`
	PerTicker   float64            `json:"per_ticker"`
	NumTickers  int                `json:"num_tickers"`
}

// EqualSplit divides the budget evenly across every series regardless of
// score. Shares are reported rounded but the spent amount is the exact
// per-ticker slice, matching how the DCA baseline accounts its spend.
func (a *Allocator) EqualSplit(series []*model.PriceSeries, budget float64) DCAResult {
	if len(series) == 0 {
		return DCAResult{}
	}
	perTicker := budget / float64(len(series))

	result := DCAResult{PerTicker: perTicker}
	for _, ps := range series {
		if ps.Len() == 0 {
			continue
		}
		price := ps.Bars[ps.Len()-1].Close
		if price <= 0 {
			continue
		}
		shares := perTicker / price
		result.Allocations = append(result.Allocations, model.Allocation{
			Ticker:           ps.Ticker,
			Market:           ps.Market,
			CurrentPrice:     price,
			AllocationAmount: perTicker,
			Shares:           roundTo(shares, 2),
			ActualAmount:     shares * price,
		})
		result.TotalAmount += shares * price
	}
	result.NumTickers = len(result.Allocations)
	return result
}

// Concentration summarizes how concentrated an allocation batch is.
type Concentration struct {
	HerfindahlIndex   float64 `json:"herfindahl_index"`
	MaxAllocation     float64 `json:"max_allocation"`
	Top3Concentration float64 `json:"top_3_concentration"`
}

// Concentrations computes the Herfindahl-Hirschman index, the largest single
// position, and the top-3 share of an allocation batch.
func Concentrations(allocations []model.Allocation) Concentration {
	var c Concentration
	if len(allocations) == 0 {
		return c
	}
	pcts := make([]float64, len(allocations))
	for i, a := range allocations {
		pcts[i] = a.AllocationPct
		c.HerfindahlIndex += a.AllocationPct * a.AllocationPct
		if a.AllocationPct > c.MaxAllocation {
			c.MaxAllocation = a.AllocationPct
		}
	}
	// Nominal amounts are pct × budget, so amount order is pct order.
	for i := 0; i < 3 && i < len(pcts); i++ {
		c.Top3Concentration += pcts[i]
	}
	return c
}

// Comparison pairs the score-based allocation with the DCA baseline.
type Comparison struct {
	ScoreBased    []model.Allocation `json:"score_based"`
	TotalInvested float64            `json:"total_invested"`
	Concentration Concentration      `json:"concentration"`
	DCA           DCAResult          `json:"dollar_cost_averaging"`
	Budget        float64            `json:"budget"`
}

// Compare runs both strategies over the same inputs.
func (a *Allocator) Compare(results []model.ScoreResult, series []*model.PriceSeries, budget float64) Comparison {
	scoreBased := a.Allocate(results, budget)
	total := 0.0
	for _, al := range scoreBased {
		total += al.ActualAmount
	}
	return Comparison{
		ScoreBased:    scoreBased,
		TotalInvested: total,
		Concentration: Concentrations(scoreBased),
		DCA:           a.EqualSplit(series, budget),
		Budget:        budget,
	}
}
