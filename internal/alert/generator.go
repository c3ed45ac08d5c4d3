package alert

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockpiler/internal/allocator"
	"stockpiler/internal/config"
	"stockpiler/internal/model"
	"stockpiler/internal/scoring"
)

// Alerts fire on the 8th of each month, matching the backtest cadence.
const alertDay = 8

// Alert is one buy recommendation ready for notification and persistence.
type Alert struct {
	ID            string                `json:"id"`
	AlertDate     time.Time             `json:"alert_date"`
	Ticker        string                `json:"ticker"`
	Market        string                `json:"market"`
	Action        string                `json:"action"`
	Price         float64               `json:"price"`
	Shares        float64               `json:"shares"`
	Amount        float64               `json:"amount"`
	AllocationPct float64               `json:"allocation_percentage"`
	Score         float64               `json:"score"`
	Components    model.ScoreComponents `json:"components"`
}

// Generator runs one scoring→allocation pass over current data and keeps
// the allocations worth telling a human about.
type Generator struct {
	scorer    scoring.Scorer
	alloc     *allocator.Allocator
	budget    float64
	threshold float64
	maxAlerts int
}

// New builds a Generator from configuration.
func New(cfg *config.Config, scorer scoring.Scorer) *Generator {
	return &Generator{
		scorer:    scorer,
		alloc:     allocator.New(cfg),
		budget:    cfg.Budget.Monthly,
		threshold: cfg.Alerts.Threshold,
		maxAlerts: cfg.Alerts.MaxPerPeriod,
	}
}

// Generate produces buy alerts for the given date. Scores below the
// threshold are dropped before allocation; afterwards the list is cut to
// the configured maximum by position in the amount-sorted batch, which
// tracks score rank but is not identical to it.
func (g *Generator) Generate(series []*model.PriceSeries, alertDate time.Time) []Alert {
	results := g.scorer.ScoreAll(series)

	eligible := make([]model.ScoreResult, 0, len(results))
	for _, r := range results {
		if r.Score >= g.threshold && r.CurrentPrice > 0 {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		log.Info().Time("date", alertDate).Float64("threshold", g.threshold).
			Msg("no alerts generated, no scores above threshold")
		return nil
	}

	allocations := g.alloc.Allocate(eligible, g.budget)

	alerts := make([]Alert, 0, len(allocations))
	for _, a := range allocations {
		if a.ActualAmount <= 0 {
			continue
		}
		alerts = append(alerts, Alert{
			ID:            uuid.NewString(),
			AlertDate:     alertDate,
			Ticker:        a.Ticker,
			Market:        a.Market,
			Action:        "BUY",
			Price:         roundTo(a.CurrentPrice, 2),
			Shares:        a.Shares,
			Amount:        roundTo(a.ActualAmount, 2),
			AllocationPct: roundTo(a.AllocationPct*100, 1),
			Score:         roundTo(a.Score, 3),
			Components:    a.Components,
		})
	}
	if len(alerts) > g.maxAlerts {
		alerts = alerts[:g.maxAlerts]
	}

	log.Info().Time("date", alertDate).Int("alerts", len(alerts)).Msg("generated alerts")
	return alerts
}

// ShouldGenerate reports whether the date falls on the alert day of month.
func ShouldGenerate(date time.Time) bool {
	return date.Day() == alertDay
}

// ScheduleDates lists every alert date within [start, end].
func ScheduleDates(start, end time.Time) []time.Time {
	current := time.Date(start.Year(), start.Month(), alertDay, 0, 0, 0, 0, start.Location())
	if start.Day() > alertDay {
		current = current.AddDate(0, 1, 0)
	}
	var dates []time.Time
	for !current.After(end) {
		dates = append(dates, current)
		current = current.AddDate(0, 1, 0)
	}
	return dates
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
