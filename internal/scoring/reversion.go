package scoring

import (
	"math"

	"stockpiler/internal/calculator"
	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

// Fixed mean-reversion blend. Unlike the multi-factor weights these are not
// user-configurable and deliberately not validated to sum to 1.0; the
// quality term is applied twice (once in the blend, once multiplicatively),
// so the headline weights understate its real influence.
const (
	reversionOversoldWeight   = 0.7
	reversionQualityWeight    = 0.2
	reversionVolatilityWeight = 0.1
)

// Reversion scores tickers on how far they trade below their own trend,
// filtered by a quality veto that suppresses falling knives. Works on
// adjusted closes so splits and dividends don't register as crashes.
type Reversion struct {
	lookback int
}

// NewReversion builds the mean-reversion scorer from configuration.
func NewReversion(cfg *config.Config) *Reversion {
	return &Reversion{lookback: cfg.Scoring.LookbackDays}
}

func (r *Reversion) ScoreTicker(series *model.PriceSeries) model.ScoreResult {
	if series == nil || series.Len() == 0 {
		return missingDataResult(series)
	}

	window := series.Tail(r.lookback)
	last := window[len(window)-1]

	oversold := r.oversoldScore(window)
	quality := r.qualityFilter(window)
	volatility := r.volatilityBonus(window)

	final := oversold*reversionOversoldWeight +
		quality*reversionQualityWeight +
		volatility*reversionVolatilityWeight
	// Quality also gates the blended score. Severe quality problems must
	// suppress the result even after the weighted sum, so the multiplier
	// stays in addition to the weighted term above.
	final *= quality

	return model.ScoreResult{
		Ticker: series.Ticker,
		Market: series.Market,
		Score:  final,
		Components: model.ScoreComponents{
			"oversold_score":   oversold,
			"quality_filter":   quality,
			"volatility_bonus": volatility,
			"final_score":      final,
		},
		CurrentPrice: last.AdjustedClose,
		AsOf:         last.Date,
		DataPoints:   len(window),
	}
}

func (r *Reversion) ScoreAll(series []*model.PriceSeries) []model.ScoreResult {
	return scoreAll(r, series)
}

// oversoldScore accumulates capped discounts of the current price below the
// 20-day MA, the 50-day MA, and a 60-bar regression trend line, with a 1.2x
// boost when at least two of the three agree.
func (r *Reversion) oversoldScore(window []model.PriceBar) float64 {
	n := len(window)
	if n < 30 {
		return 0
	}
	adj := model.AdjustedCloses(window)
	current := adj[n-1]

	ma20 := calculator.Mean(adj[n-20:])
	k := 50
	if n < k {
		k = n
	}
	ma50 := calculator.Mean(adj[n-k:])

	trendPrice := ma50
	if n >= 60 {
		prices := adj[n-60:]
		slope, intercept := calculator.LinearRegression(prices)
		trendPrice = slope*float64(len(prices)-1) + intercept
	}

	score := 0.0
	if current < ma20 {
		score += math.Min((ma20-current)/ma20*3, 0.4)
	}
	if current < ma50 {
		score += math.Min((ma50-current)/ma50*2, 0.3)
	}
	if current < trendPrice {
		score += math.Min((trendPrice-current)/trendPrice*2, 0.3)
	}

	signals := 0
	if current < ma20 {
		signals++
	}
	if current < ma50 {
		signals++
	}
	if current < trendPrice {
		signals++
	}
	if signals >= 2 {
		score *= 1.2
	}

	return clamp01(score)
}

// qualityFilter starts at a perfect 1.0 and shrinks multiplicatively for
// each sign that the dip is deterioration rather than opportunity: sharp
// 10-day drawdowns, panic single-day drops, a secular slide over the
// trailing ~60 bars, and thin recent volume.
func (r *Reversion) qualityFilter(window []model.PriceBar) float64 {
	n := len(window)
	if n < 30 {
		return 0
	}
	adj := model.AdjustedCloses(window)
	returns := calculator.DailyReturns(adj)

	var longTermReturn float64
	if n >= 61 {
		longTermReturn = adj[n-1]/adj[n-61] - 1
	} else {
		longTermReturn = adj[n-1]/adj[0] - 1
	}

	recentMinReturn := math.Inf(1)
	for _, ret := range returns[n-5:] {
		if ret < recentMinReturn {
			recentMinReturn = ret
		}
	}

	peak10 := math.Inf(-1)
	for _, p := range adj[n-10:] {
		if p > peak10 {
			peak10 = p
		}
	}
	recentMaxDecline := (peak10 - adj[n-1]) / peak10

	score := 1.0

	// Single worst bracket per category, not cumulative.
	switch {
	case recentMaxDecline > 0.25:
		score *= 0.2
	case recentMaxDecline > 0.15:
		score *= 0.5
	case recentMaxDecline > 0.10:
		score *= 0.7
	}

	switch {
	case recentMinReturn < -0.15:
		score *= 0.3
	case recentMinReturn < -0.10:
		score *= 0.6
	}

	switch {
	case longTermReturn < -0.30:
		score *= 0.4
	case longTermReturn < -0.20:
		score *= 0.7
	}

	volumes := model.Volumes(window)
	recentVol := calculator.Mean(volumes[n-10:])
	if recentVol < calculator.Mean(volumes)*0.5 {
		score *= 0.8
	}

	return clamp01(score)
}

// volatilityBonus favors inherently volatile names, which have more room to
// snap back: trailing 30-bar return std-dev scaled by 15 and capped at 1.
func (r *Reversion) volatilityBonus(window []model.PriceBar) float64 {
	n := len(window)
	if n < 20 {
		return 0
	}
	returns := calculator.DailyReturns(model.AdjustedCloses(window))
	k := 30
	if n < k {
		k = n
	}
	std := calculator.SampleStd(returns[len(returns)-k:])
	return math.Min(std*15, 1.0)
}
