package backtest

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockpiler/internal/allocator"
	"stockpiler/internal/config"
	"stockpiler/internal/model"
	"stockpiler/internal/scoring"
)

// Minimum bars an instrument needs in a month's window to be scored.
const minDataPoints = 10

// Investment is one simulated purchase event.
type Investment struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Market string    `json:"market"`
	Shares float64   `json:"shares"`
	Price  float64   `json:"price"`
	Amount float64   `json:"amount"`
	Score  float64   `json:"score"`
}

// PortfolioPoint is a mark-to-market snapshot after one monthly step.
type PortfolioPoint struct {
	Date     time.Time `json:"date"`
	Invested float64   `json:"invested"`
	Value    float64   `json:"value"`
}

// DCAComparison summarizes the equal-weight baseline run over the same dates.
type DCAComparison struct {
	TotalInvested float64 `json:"total_invested"`
	FinalValue    float64 `json:"final_value"`
	TotalReturn   float64 `json:"total_return"`
	ReturnPct     float64 `json:"return_pct"`
}

// Metrics are the terminal performance numbers of a backtest run.
type Metrics struct {
	TotalInvested         float64       `json:"total_invested"`
	FinalPortfolioValue   float64       `json:"final_portfolio_value"`
	TotalReturn           float64       `json:"total_return"`
	TotalReturnPct        float64       `json:"total_return_pct"`
	AnnualizedReturnPct   float64       `json:"annualized_return_pct"`
	InvestmentPeriodYears float64       `json:"investment_period_years"`
	NumberOfInvestments   int           `json:"number_of_investments"`
	UniqueTickers         int           `json:"unique_tickers"`
	DCAComparison         DCAComparison `json:"dca_comparison"`
	OutperformanceVsDCA   float64       `json:"outperformance_vs_dca"`
}

// Result carries everything one backtest run produced.
type Result struct {
	RunID       string           `json:"run_id"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Investments []Investment     `json:"investments"`
	Timeline    []PortfolioPoint `json:"timeline"`
	Holdings    []model.Holding  `json:"holdings"`
	Metrics     Metrics          `json:"metrics"`
}

// Engine replays the scoring→allocation pipeline over history on a monthly
// cadence, accumulating holdings at weighted-average cost.
type Engine struct {
	cfg    *config.Config
	scorer scoring.Scorer
	alloc  *allocator.Allocator
}

// New builds an Engine from configuration.
func New(cfg *config.Config, scorer scoring.Scorer) *Engine {
	return &Engine{
		cfg:    cfg,
		scorer: scorer,
		alloc:  allocator.New(cfg),
	}
}

// Run executes the monthly backtest over the given series. The series are
// read-only for the duration of the run; holdings state lives entirely
// inside this call.
func (e *Engine) Run(series []*model.PriceSeries) (*Result, error) {
	if len(series) == 0 {
		return nil, errors.New("no ticker data available for backtesting")
	}
	cfgStart, err := e.cfg.BacktestStart()
	if err != nil {
		return nil, errors.New("backtest.start_date is not configured")
	}
	cfgEnd, err := e.cfg.BacktestEnd()
	if err != nil {
		return nil, errors.New("backtest.end_date is not configured")
	}

	start, end := e.clampToAvailable(series, cfgStart, cfgEnd)
	if end.Before(start) {
		return nil, errors.New("no overlap between configured range and available data")
	}
	log.Info().Time("start", start).Time("end", end).Msg("running backtest")

	lookback := e.cfg.Scoring.LookbackDays
	budget := e.cfg.Budget.Monthly

	result := &Result{RunID: uuid.NewString(), Start: start, End: end}
	holdings := make(map[string]*model.Holding)
	totalInvested := 0.0

	for date := start; !date.After(end); date = addMonth(date) {
		scores := make([]model.ScoreResult, 0, len(series))
		for _, ps := range series {
			window := ps.BarsUpTo(date)
			if len(window) > lookback {
				window = window[len(window)-lookback:]
			}
			if len(window) < minDataPoints {
				continue
			}
			monthSeries := &model.PriceSeries{Ticker: ps.Ticker, Market: ps.Market, Bars: window}
			scores = append(scores, e.scorer.ScoreTicker(monthSeries))
		}
		if len(scores) == 0 {
			log.Warn().Time("date", date).Msg("no scorable instruments this month, skipping")
			continue
		}

		allocations := e.alloc.Allocate(scores, budget)
		monthlyInvested := 0.0
		for _, a := range allocations {
			key := a.Key()
			h, ok := holdings[key]
			if !ok {
				h = &model.Holding{Ticker: a.Ticker, Market: a.Market}
				holdings[key] = h
			}
			h.AddPurchase(a.Shares, a.CurrentPrice, a.ActualAmount)

			result.Investments = append(result.Investments, Investment{
				Date:   date,
				Ticker: a.Ticker,
				Market: a.Market,
				Shares: a.Shares,
				Price:  a.CurrentPrice,
				Amount: a.ActualAmount,
				Score:  a.Score,
			})
			monthlyInvested += a.ActualAmount
		}
		totalInvested += monthlyInvested

		value := markToMarket(holdings, series, date)
		result.Timeline = append(result.Timeline, PortfolioPoint{
			Date:     date,
			Invested: totalInvested,
			Value:    value,
		})
		log.Info().Time("date", date).
			Float64("invested", monthlyInvested).
			Float64("portfolio_value", value).
			Msg("processed backtest month")
	}

	if len(result.Investments) == 0 {
		return nil, errors.New("backtest produced no investments")
	}

	for _, h := range holdings {
		result.Holdings = append(result.Holdings, *h)
	}
	sort.Slice(result.Holdings, func(i, j int) bool {
		hi, hj := result.Holdings[i], result.Holdings[j]
		return hi.Ticker+"_"+hi.Market < hj.Ticker+"_"+hj.Market
	})
	result.Metrics = e.computeMetrics(result, holdings, series)
	return result, nil
}

// clampToAvailable narrows the configured window to the dates every series
// can actually support once the lookback is accounted for.
func (e *Engine) clampToAvailable(series []*model.PriceSeries, cfgStart, cfgEnd time.Time) (time.Time, time.Time) {
	lookback := e.cfg.Scoring.LookbackDays
	start, end := cfgStart, cfgEnd
	for _, ps := range series {
		if ps.Len() == 0 {
			continue
		}
		tickerStart := ps.Bars[ps.Len()-1].Date
		if ps.Len() > lookback {
			tickerStart = ps.Bars[lookback].Date
		}
		if tickerStart.After(start) {
			start = tickerStart
		}
		tickerEnd := ps.Bars[ps.Len()-1].Date
		if tickerEnd.Before(end) {
			end = tickerEnd
		}
	}
	return start, end
}

func (e *Engine) computeMetrics(result *Result, holdings map[string]*model.Holding, series []*model.PriceSeries) Metrics {
	firstDate := result.Investments[0].Date
	finalDate := result.Investments[len(result.Investments)-1].Date

	totalInvested := 0.0
	unique := make(map[string]struct{})
	investmentDates := make([]time.Time, 0)
	seenDates := make(map[time.Time]struct{})
	for _, inv := range result.Investments {
		totalInvested += inv.Amount
		unique[inv.Ticker+"_"+inv.Market] = struct{}{}
		if _, ok := seenDates[inv.Date]; !ok {
			seenDates[inv.Date] = struct{}{}
			investmentDates = append(investmentDates, inv.Date)
		}
	}

	finalValue := markToMarket(holdings, series, finalDate)
	totalReturn := finalValue - totalInvested

	m := Metrics{
		TotalInvested:       totalInvested,
		FinalPortfolioValue: finalValue,
		TotalReturn:         totalReturn,
		NumberOfInvestments: len(result.Investments),
		UniqueTickers:       len(unique),
	}
	if totalInvested > 0 {
		m.TotalReturnPct = totalReturn / totalInvested * 100
	}
	years := finalDate.Sub(firstDate).Hours() / 24 / 365.25
	m.InvestmentPeriodYears = years
	if years > 0 && totalInvested > 0 {
		m.AnnualizedReturnPct = (math.Pow(finalValue/totalInvested, 1/years) - 1) * 100
	}

	m.DCAComparison = e.simulateDCA(series, investmentDates)
	m.OutperformanceVsDCA = totalReturn - m.DCAComparison.TotalReturn
	return m
}

// simulateDCA runs the equal-weight baseline over the same investment
// dates: every configured instrument gets budget/N each period regardless
// of score. A missing price simply skips that instrument for that date.
func (e *Engine) simulateDCA(series []*model.PriceSeries, dates []time.Time) DCAComparison {
	if len(series) == 0 || len(dates) == 0 {
		return DCAComparison{}
	}
	perTicker := e.cfg.Budget.Monthly / float64(len(series))

	shares := make(map[string]float64)
	invested := 0.0
	finalDate := dates[0]
	for _, d := range dates {
		if d.After(finalDate) {
			finalDate = d
		}
		for _, ps := range series {
			price, ok := ps.PriceAt(d)
			if !ok || price <= 0 {
				continue
			}
			shares[ps.Key()] += perTicker / price
			invested += perTicker
		}
	}

	finalValue := 0.0
	for _, ps := range series {
		if s, ok := shares[ps.Key()]; ok {
			if price, priceOK := ps.PriceAt(finalDate); priceOK {
				finalValue += s * price
			}
		}
	}

	cmp := DCAComparison{
		TotalInvested: invested,
		FinalValue:    finalValue,
		TotalReturn:   finalValue - invested,
	}
	if invested > 0 {
		cmp.ReturnPct = cmp.TotalReturn / invested * 100
	}
	return cmp
}

func markToMarket(holdings map[string]*model.Holding, series []*model.PriceSeries, date time.Time) float64 {
	value := 0.0
	for _, ps := range series {
		h, ok := holdings[ps.Key()]
		if !ok {
			continue
		}
		if price, priceOK := ps.PriceAt(date); priceOK {
			value += h.MarketValue(price)
		}
	}
	return value
}

// addMonth advances by one calendar month, clamping to the last day when
// the target month is shorter (Jan 31 -> Feb 28).
func addMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m+1, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
