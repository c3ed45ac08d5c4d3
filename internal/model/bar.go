package model

import "time"

// PriceBar represents a single daily OHLCV record.
type PriceBar struct {
	Date          time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	AdjustedClose float64
}

// PriceSeries holds the daily bars for one (ticker, market) pair,
// sorted ascending by date.
type PriceSeries struct {
	Ticker string
	Market string
	Bars   []PriceBar
}

// Key returns the "TICKER_MARKET" identifier used by holdings and file names.
func (s *PriceSeries) Key() string {
	return s.Ticker + "_" + s.Market
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Tail returns the trailing n bars, or all bars if fewer exist.
// The returned slice aliases the series; callers must not mutate it.
func (s *PriceSeries) Tail(n int) []PriceBar {
	if s == nil || n <= 0 {
		return nil
	}
	if len(s.Bars) <= n {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// BarsUpTo returns the bars dated at or before the given date.
func (s *PriceSeries) BarsUpTo(date time.Time) []PriceBar {
	if s == nil {
		return nil
	}
	// Bars are sorted ascending, so scan from the end.
	i := len(s.Bars)
	for i > 0 && s.Bars[i-1].Date.After(date) {
		i--
	}
	return s.Bars[:i]
}

// PriceAt returns the close of the latest bar dated at or before the given
// date. The second return value is false when no such bar exists.
func (s *PriceSeries) PriceAt(date time.Time) (float64, bool) {
	bars := s.BarsUpTo(date)
	if len(bars) == 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close, true
}

// Closes extracts the close column from a bar slice.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// AdjustedCloses extracts the adjusted close column from a bar slice.
func AdjustedCloses(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.AdjustedClose
	}
	return out
}

// Volumes extracts the volume column from a bar slice.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
