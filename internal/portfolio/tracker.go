package portfolio

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"stockpiler/internal/alert"
	"stockpiler/internal/model"
)

// Tracker maintains the live portfolio across alert runs with concurrency
// safety. Positions accumulate at volume-weighted average cost.
type Tracker struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewTracker creates a Tracker, loading or initializing state from disk.
func NewTracker(filePath string) (*Tracker, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	t := &Tracker{state: state, filePath: filePath}
	if err := t.save(); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyAlerts folds a batch of purchase alerts into the portfolio.
func (t *Tracker) ApplyAlerts(alerts []alert.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, a := range alerts {
		key := a.Ticker + "_" + a.Market
		h, ok := t.state.Holdings[key]
		if !ok {
			h = &model.Holding{Ticker: a.Ticker, Market: a.Market}
			t.state.Holdings[key] = h
		}
		h.AddPurchase(a.Shares, a.Price, a.Amount)
		t.state.TotalInvested += a.Amount
		t.state.NumPurchases++
	}

	if err := t.save(); err != nil {
		log.Error().Err(err).Msg("failed to save portfolio state")
	}
}

// Holdings returns the current positions sorted by ticker key.
func (t *Tracker) Holdings() []model.Holding {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Holding, 0, len(t.state.Holdings))
	for _, h := range t.state.Holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ticker+"_"+out[i].Market < out[j].Ticker+"_"+out[j].Market
	})
	return out
}

// TotalInvested returns the cumulative amount spent across all purchases.
func (t *Tracker) TotalInvested() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.TotalInvested
}

// MarketValue values the portfolio against the latest prices in the given
// series. Positions with no matching series are valued at average cost.
func (t *Tracker) MarketValue(series []*model.PriceSeries) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	prices := map[string]float64{}
	for _, s := range series {
		if s.Len() > 0 {
			prices[s.Key()] = s.Bars[s.Len()-1].Close
		}
	}

	total := 0.0
	for key, h := range t.state.Holdings {
		price, ok := prices[key]
		if !ok {
			price = h.AvgCost
		}
		total += h.MarketValue(price)
	}
	return total
}

func (t *Tracker) save() error {
	return SaveState(t.filePath, t.state)
}
