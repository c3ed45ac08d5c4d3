package allocator

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

// Allocator splits a fixed periodic budget across scored tickers in
// proportion to their scores, subject to a minimum-position floor.
type Allocator struct {
	minPct float64 // fraction, e.g. 0.05
}

// New builds an Allocator from configuration.
func New(cfg *config.Config) *Allocator {
	return &Allocator{minPct: cfg.MinimumAllocation()}
}

// NewWithMinimum builds an Allocator with an explicit minimum fraction.
func NewWithMinimum(minPct float64) *Allocator {
	return &Allocator{minPct: minPct}
}

// Allocate converts score results into budget allocations. Results with a
// zero score, missing price, or a scoring error are excluded. The returned
// slice is sorted by nominal allocation amount descending.
func (a *Allocator) Allocate(results []model.ScoreResult, budget float64) []model.Allocation {
	valid := make([]model.ScoreResult, 0, len(results))
	for _, r := range results {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		log.Warn().Msg("no valid scores for allocation")
		return nil
	}

	totalScore := 0.0
	for _, r := range valid {
		totalScore += r.Score
	}

	n := len(valid)
	pcts := make([]float64, n)
	if totalScore == 0 {
		log.Warn().Msg("total score is zero, using equal allocation")
		for i := range pcts {
			pcts[i] = 1.0 / float64(n)
		}
	} else {
		for i, r := range valid {
			pcts[i] = r.Score / totalScore
		}
	}

	// Minimum-allocation floor, adaptively reduced when the configured
	// minimum cannot fit every candidate. The 80% reservation leaves
	// headroom so the floors alone never exhaust the budget.
	minPct := a.minPct
	if minPct*float64(n) > 1.0 {
		minPct = 0.8 / float64(n)
		log.Warn().Int("tickers", n).Float64("adjusted_min_pct", minPct).
			Msg("too many tickers for configured minimum, adjusting floor")
	}
	for i := range pcts {
		if pcts[i] < minPct {
			pcts[i] = minPct
		}
	}

	totalPct := 0.0
	for _, p := range pcts {
		totalPct += p
	}
	if totalPct > 1.0 {
		for i := range pcts {
			pcts[i] /= totalPct
		}
	}

	allocations := make([]model.Allocation, n)
	totalActual := 0.0
	for i, r := range valid {
		amount := pcts[i] * budget
		shares := roundTo(amount/r.CurrentPrice, 2)
		actual := shares * r.CurrentPrice
		allocations[i] = model.Allocation{
			Ticker:           r.Ticker,
			Market:           r.Market,
			Score:            r.Score,
			CurrentPrice:     r.CurrentPrice,
			AllocationPct:    pcts[i],
			AllocationAmount: amount,
			Shares:           shares,
			ActualAmount:     actual,
			Components:       r.Components,
		}
		totalActual += actual
	}

	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].AllocationAmount > allocations[j].AllocationAmount
	})

	log.Info().Float64("total", totalActual).Int("tickers", n).
		Msg("allocated budget across tickers")
	return allocations
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
