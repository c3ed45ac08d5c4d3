package model

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func series() *PriceSeries {
	s := &PriceSeries{Ticker: "VOO", Market: "US"}
	for i, c := range []float64{100, 102, 101, 105, 104} {
		s.Bars = append(s.Bars, PriceBar{
			Date:          day("2024-06-03").AddDate(0, 0, i),
			Close:         c,
			AdjustedClose: c - 1,
			Volume:        float64(1000 + i),
		})
	}
	return s
}

func TestPriceSeries_Tail(t *testing.T) {
	s := series()
	if got := len(s.Tail(3)); got != 3 {
		t.Errorf("expected 3 bars, got %d", got)
	}
	if got := s.Tail(3)[0].Close; got != 101 {
		t.Errorf("tail should start at the third-from-last bar, got close %f", got)
	}
	if got := len(s.Tail(99)); got != 5 {
		t.Errorf("oversized tail returns everything, got %d", got)
	}
	if s.Tail(0) != nil {
		t.Error("non-positive n yields nil")
	}
	var nilSeries *PriceSeries
	if nilSeries.Tail(3) != nil {
		t.Error("nil series yields nil")
	}
}

func TestPriceSeries_BarsUpTo(t *testing.T) {
	s := series()
	if got := len(s.BarsUpTo(day("2024-06-05"))); got != 3 {
		t.Errorf("expected 3 bars up to 06-05, got %d", got)
	}
	if got := len(s.BarsUpTo(day("2024-06-01"))); got != 0 {
		t.Errorf("expected no bars before the series, got %d", got)
	}
	if got := len(s.BarsUpTo(day("2024-12-31"))); got != 5 {
		t.Errorf("expected all bars, got %d", got)
	}
}

func TestPriceSeries_PriceAt(t *testing.T) {
	s := series()
	// Exact date.
	if p, ok := s.PriceAt(day("2024-06-04")); !ok || p != 102 {
		t.Errorf("expected 102, got %f ok=%v", p, ok)
	}
	// Weekend/holiday falls back to the latest earlier bar.
	if p, ok := s.PriceAt(day("2024-06-09")); !ok || p != 104 {
		t.Errorf("expected carry-forward 104, got %f ok=%v", p, ok)
	}
	if _, ok := s.PriceAt(day("2024-01-01")); ok {
		t.Error("expected no price before the series")
	}
}

func TestHolding_AddPurchase(t *testing.T) {
	h := &Holding{Ticker: "VOO", Market: "US"}
	h.AddPurchase(10, 100, 1000)
	if h.Shares != 10 || h.AvgCost != 100 {
		t.Fatalf("first buy: got %f shares at %f", h.Shares, h.AvgCost)
	}

	h.AddPurchase(5, 200, 1000)
	// (10*100 + 1000) / 15
	want := 2000.0 / 15.0
	if math.Abs(h.AvgCost-want) > 1e-9 {
		t.Errorf("expected avg cost %f, got %f", want, h.AvgCost)
	}
	if h.Shares != 15 {
		t.Errorf("expected 15 shares, got %f", h.Shares)
	}
	if got := h.MarketValue(200); math.Abs(got-3000) > 1e-9 {
		t.Errorf("expected market value 3000, got %f", got)
	}
}

func TestScoreResult_Valid(t *testing.T) {
	valid := ScoreResult{Ticker: "A", Score: 0.4, CurrentPrice: 100}
	if !valid.Valid() {
		t.Error("expected valid")
	}
	tests := []ScoreResult{
		{Ticker: "B", Score: 0, CurrentPrice: 100},
		{Ticker: "C", Score: 0.4, CurrentPrice: 0},
		{Ticker: "D", Score: 0.4, CurrentPrice: 100, Err: "no price data available"},
	}
	for _, r := range tests {
		if r.Valid() {
			t.Errorf("%s should be invalid", r.Ticker)
		}
	}
}

func TestColumnExtractors(t *testing.T) {
	bars := series().Bars
	closes := Closes(bars)
	adj := AdjustedCloses(bars)
	vols := Volumes(bars)

	if len(closes) != 5 || closes[3] != 105 {
		t.Errorf("unexpected closes: %v", closes)
	}
	if adj[3] != 104 {
		t.Errorf("unexpected adjusted closes: %v", adj)
	}
	if vols[0] != 1000 {
		t.Errorf("unexpected volumes: %v", vols)
	}
}
