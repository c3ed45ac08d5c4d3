package marketdata

import (
	"context"
	"fmt"

	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

// Fetcher retrieves daily price history for one instrument. Implementations
// own their rate limiting; callers just wait on the context.
type Fetcher interface {
	FetchDaily(ctx context.Context, ticker, market string) (*model.PriceSeries, error)
	Name() string
}

// NewFetcher selects a fetcher implementation from the configured source.
func NewFetcher(cfg *config.Config) (Fetcher, error) {
	switch cfg.Data.Source {
	case "alpha_vantage":
		if cfg.Data.AlphaVantageKey == "" {
			return nil, fmt.Errorf("data.alpha_vantage_key is required for source %q", cfg.Data.Source)
		}
		return NewAlphaVantage(cfg.Data.AlphaVantageKey), nil
	case "yahoo":
		return NewYahoo(), nil
	default:
		return nil, fmt.Errorf("unsupported data source %q", cfg.Data.Source)
	}
}

// MockFetcher returns canned series for development and tests.
type MockFetcher struct {
	Series map[string]*model.PriceSeries // keyed by "TICKER_MARKET"
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, ticker, market string) (*model.PriceSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ps, ok := m.Series[ticker+"_"+market]
	if !ok {
		return nil, fmt.Errorf("mock: no data for %s_%s", ticker, market)
	}
	return ps, nil
}
