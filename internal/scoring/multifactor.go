package scoring

import (
	"math"

	"stockpiler/internal/calculator"
	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

// MultiFactor scores a ticker as a weighted blend of four momentum/position
// components, each clamped to [0,1]. With weights summing to 1.0 the final
// score lands in [0,1] without a further clamp.
type MultiFactor struct {
	lookback    int
	weights     config.Weights
	decayFactor float64
	volWindow   int
}

// NewMultiFactor builds the multi-factor scorer from configuration.
func NewMultiFactor(cfg *config.Config) *MultiFactor {
	return &MultiFactor{
		lookback:    cfg.Scoring.LookbackDays,
		weights:     cfg.Scoring.Weights,
		decayFactor: cfg.Scoring.MomentumDecay,
		volWindow:   cfg.Scoring.VolatilityWindow,
	}
}

func (m *MultiFactor) ScoreTicker(series *model.PriceSeries) model.ScoreResult {
	if series == nil || series.Len() == 0 {
		return missingDataResult(series)
	}

	window := series.Tail(m.lookback)
	last := window[len(window)-1]

	pricePosition := m.pricePositionScore(window)
	momentumDecay := m.momentumDecayScore(window)
	volatilityAdj := m.volatilityAdjustedScore(window)
	volumeConf := m.volumeConfirmationScore(window)

	final := pricePosition*m.weights.PricePosition +
		momentumDecay*m.weights.MomentumDecay +
		volatilityAdj*m.weights.VolatilityAdjusted +
		volumeConf*m.weights.VolumeConfirmation

	return model.ScoreResult{
		Ticker: series.Ticker,
		Market: series.Market,
		Score:  final,
		Components: model.ScoreComponents{
			"price_position":      pricePosition,
			"momentum_decay":      momentumDecay,
			"volatility_adjusted": volatilityAdj,
			"volume_confirmation": volumeConf,
			"final_score":         final,
		},
		CurrentPrice: last.Close,
		AsOf:         last.Date,
		DataPoints:   len(window),
	}
}

func (m *MultiFactor) ScoreAll(series []*model.PriceSeries) []model.ScoreResult {
	return scoreAll(m, series)
}

// pricePositionScore is higher when the current close sits lower in the
// window's high/low range. A flat range scores the neutral 0.5.
func (m *MultiFactor) pricePositionScore(window []model.PriceBar) float64 {
	if len(window) < 2 {
		return 0
	}
	high, low, err := calculator.HighLowRange(window)
	if err != nil {
		return 0
	}
	if high == low {
		return 0.5
	}
	current := window[len(window)-1].Close
	return clamp01((high - current) / (high - low))
}

// momentumDecayScore rewards sustained recent weakness. The trailing 20
// daily returns are weighted newest-first with an exponential decay;
// declines add their magnitude, gains subtract half of theirs.
func (m *MultiFactor) momentumDecayScore(window []model.PriceBar) float64 {
	if len(window) < 5 {
		return 0
	}
	returns := calculator.DailyReturns(model.Closes(window))
	if len(returns) > 20 {
		returns = returns[len(returns)-20:]
	}

	score := 0.0
	weight := 1.0
	for i := len(returns) - 1; i >= 0; i-- {
		ret := returns[i]
		if ret < 0 {
			score += weight * -ret
		} else {
			score -= weight * ret * 0.5
		}
		weight *= m.decayFactor
	}
	return clamp01(score / 2.0)
}

// volatilityAdjustedScore credits a recent 5-bar decline scaled by the
// window's return volatility, squashed through 2/(1+e^-x)-1.
func (m *MultiFactor) volatilityAdjustedScore(window []model.PriceBar) float64 {
	if len(window) < m.volWindow {
		return 0
	}
	closes := model.Closes(window)
	// Drop the leading placeholder return so the std-dev covers actual
	// day-over-day changes only.
	std := calculator.SampleStd(calculator.DailyReturns(closes)[1:])
	if std == 0 {
		return 0.5
	}
	prev := closes[len(closes)-5]
	if prev == 0 {
		return 0
	}
	recentChange := (closes[len(closes)-1] - prev) / prev
	decline := math.Max(0, -recentChange)
	x := decline / std
	return clamp01(2/(1+math.Exp(-x)) - 1)
}

// volumeConfirmationScore checks that declines over the last 10 bars came
// with above-average volume: heavy selling confirms, heavy buying detracts.
func (m *MultiFactor) volumeConfirmationScore(window []model.PriceBar) float64 {
	if len(window) < 10 {
		return 0
	}
	returns := calculator.DailyReturns(model.Closes(window))
	volumeMA, valid := calculator.RollingMean(model.Volumes(window), 20, 5)

	score := 0.0
	for i := len(window) - 10; i < len(window); i++ {
		if i == 0 || !valid[i] {
			continue
		}
		ratio := 1.0
		if volumeMA[i] > 0 {
			ratio = window[i].Volume / volumeMA[i]
		}
		ret := returns[i]
		if ret < 0 {
			score += ratio * -ret
		} else if ret > 0 {
			score -= ratio * ret * 0.3
		}
	}
	return clamp01(score / 5.0)
}
