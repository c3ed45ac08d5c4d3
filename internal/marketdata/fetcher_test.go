package marketdata

import (
	"context"
	"errors"
	"testing"

	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

func TestNewFetcher_SourceSelection(t *testing.T) {
	cfg, _ := config.Load("nonexistent.yaml")

	cfg.Data.Source = "yahoo"
	f, err := NewFetcher(cfg)
	if err != nil || f.Name() != "yahoo" {
		t.Errorf("expected yahoo fetcher, got %v %v", f, err)
	}

	cfg.Data.Source = "alpha_vantage"
	if _, err := NewFetcher(cfg); err == nil {
		t.Error("alpha_vantage without an api key must fail")
	}
	cfg.Data.AlphaVantageKey = "demo"
	f, err = NewFetcher(cfg)
	if err != nil || f.Name() != "alpha_vantage" {
		t.Errorf("expected alpha_vantage fetcher, got %v %v", f, err)
	}

	cfg.Data.Source = "bloomberg"
	if _, err := NewFetcher(cfg); err == nil {
		t.Error("expected error for unsupported source")
	}
}

func TestMockFetcher(t *testing.T) {
	mock := &MockFetcher{Series: map[string]*model.PriceSeries{
		"VOO_US": {Ticker: "VOO", Market: "US"},
	}}

	series, err := mock.FetchDaily(context.Background(), "VOO", "US")
	if err != nil || series.Ticker != "VOO" {
		t.Errorf("expected canned series, got %v %v", series, err)
	}
	if _, err := mock.FetchDaily(context.Background(), "QQQ", "US"); err == nil {
		t.Error("expected error for unknown ticker")
	}

	mock.Err = errors.New("boom")
	if _, err := mock.FetchDaily(context.Background(), "VOO", "US"); err == nil {
		t.Error("expected the injected error")
	}
}
