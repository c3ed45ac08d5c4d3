package scoring

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

// Scorer evaluates tickers for long-term accumulation. Implementations are
// pure over their inputs: the same series and window always produce the
// same result.
type Scorer interface {
	// ScoreTicker scores one series. Missing or empty data yields a
	// zero-score result with Err set, never an error return.
	ScoreTicker(series *model.PriceSeries) model.ScoreResult
	// ScoreAll scores every series and returns results sorted by score
	// descending.
	ScoreAll(series []*model.PriceSeries) []model.ScoreResult
}

// New selects a scorer implementation from the configured method.
func New(cfg *config.Config) (Scorer, error) {
	switch cfg.Scoring.Method {
	case config.MethodMultiFactor:
		return NewMultiFactor(cfg), nil
	case config.MethodReversion:
		return NewReversion(cfg), nil
	default:
		return nil, fmt.Errorf("unknown scoring method %q", cfg.Scoring.Method)
	}
}

func scoreAll(s Scorer, series []*model.PriceSeries) []model.ScoreResult {
	results := make([]model.ScoreResult, 0, len(series))
	for _, ps := range series {
		results = append(results, s.ScoreTicker(ps))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	log.Info().Int("tickers", len(results)).Msg("scored tickers")
	return results
}

func missingDataResult(series *model.PriceSeries) model.ScoreResult {
	r := model.ScoreResult{
		Components: model.ScoreComponents{},
		Err:        "no price data available",
	}
	if series != nil {
		r.Ticker = series.Ticker
		r.Market = series.Market
		log.Warn().Str("ticker", series.Ticker).Str("market", series.Market).
			Msg("no price data available")
	}
	return r
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
