package scoring

import (
	"math"
	"testing"
	"time"

	"stockpiler/internal/allocator"
	"stockpiler/internal/config"
	"stockpiler/internal/model"
)

func testConfig(method string) *config.Config {
	cfg, _ := config.Load("nonexistent.yaml")
	cfg.Scoring.Method = method
	return cfg
}

// makeSeries builds a daily series where every bar carries the same value in
// Close and AdjustedClose, with a narrow high/low band around it.
func makeSeries(ticker string, closes []float64, volume float64) *model.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Ticker: ticker, Market: "US"}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.PriceBar{
			Date:          start.AddDate(0, 0, i),
			Open:          c,
			High:          c,
			Low:           c,
			Close:         c,
			Volume:        volume,
			AdjustedClose: c,
		})
	}
	return s
}

func flatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func rampCloses(n int, start, dailyPct float64) []float64 {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyPct
	}
	return closes
}

func TestMultiFactor_FlatSeries(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))
	result := scorer.ScoreTicker(makeSeries("FLAT", flatCloses(60, 100), 1000))

	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	// Degenerate range is neutral.
	if got := result.Components["price_position"]; got != 0.5 {
		t.Errorf("price_position on flat series: expected 0.5, got %f", got)
	}
	// Zero returns mean zero momentum; zero std means neutral volatility.
	if got := result.Components["momentum_decay"]; got != 0 {
		t.Errorf("momentum_decay on flat series: expected 0, got %f", got)
	}
	if got := result.Components["volatility_adjusted"]; got != 0.5 {
		t.Errorf("volatility_adjusted on flat series: expected 0.5, got %f", got)
	}
	if got := result.Components["volume_confirmation"]; got != 0 {
		t.Errorf("volume_confirmation on flat series: expected 0, got %f", got)
	}
	// 0.4*0.5 + 0.3*0 + 0.2*0.5 + 0.1*0
	if math.Abs(result.Score-0.3) > 1e-9 {
		t.Errorf("flat series score: expected 0.3, got %f", result.Score)
	}
	if result.CurrentPrice != 100 {
		t.Errorf("expected current price 100, got %f", result.CurrentPrice)
	}
	if result.DataPoints != 60 {
		t.Errorf("expected 60 data points, got %d", result.DataPoints)
	}
}

func TestMultiFactor_WeightedSumIdentity(t *testing.T) {
	cfg := testConfig(config.MethodMultiFactor)
	scorer := NewMultiFactor(cfg)
	result := scorer.ScoreTicker(makeSeries("DIP", rampCloses(60, 100, -0.008), 1000))

	w := cfg.Scoring.Weights
	want := result.Components["price_position"]*w.PricePosition +
		result.Components["momentum_decay"]*w.MomentumDecay +
		result.Components["volatility_adjusted"]*w.VolatilityAdjusted +
		result.Components["volume_confirmation"]*w.VolumeConfirmation
	if math.Abs(result.Score-want) > 1e-9 {
		t.Errorf("score %f does not match weighted component sum %f", result.Score, want)
	}
	if result.Components["final_score"] != result.Score {
		t.Errorf("final_score component should mirror Score")
	}
}

func TestMultiFactor_DeclineBeatsRally(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))

	decline := scorer.ScoreTicker(makeSeries("DOWN", rampCloses(60, 100, -0.01), 1000))
	rally := scorer.ScoreTicker(makeSeries("UP", rampCloses(60, 100, 0.01), 1000))

	if decline.Score <= rally.Score {
		t.Errorf("sustained decline should outscore a rally: decline %f, rally %f",
			decline.Score, rally.Score)
	}
	// A rally is the worst accumulation setup on every component.
	if rally.Components["price_position"] != 0 {
		t.Errorf("rally price_position: expected 0, got %f", rally.Components["price_position"])
	}
	if rally.Components["momentum_decay"] != 0 {
		t.Errorf("rally momentum_decay: expected 0, got %f", rally.Components["momentum_decay"])
	}
}

func TestMultiFactor_MomentumAllNegativeBeatsMixed(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))

	mixed := make([]float64, 60)
	price := 100.0
	for i := range mixed {
		mixed[i] = price
		if i%2 == 0 {
			price *= 1.005
		} else {
			price *= 0.995
		}
	}
	allDown := scorer.ScoreTicker(makeSeries("DOWN", rampCloses(60, 100, -0.005), 1000))
	alternating := scorer.ScoreTicker(makeSeries("MIX", mixed, 1000))

	if allDown.Components["momentum_decay"] <= alternating.Components["momentum_decay"] {
		t.Errorf("uniform decline should carry more momentum weight: %f vs %f",
			allDown.Components["momentum_decay"], alternating.Components["momentum_decay"])
	}
}

func TestMultiFactor_ShortSeriesComponentsZero(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))
	result := scorer.ScoreTicker(makeSeries("SHORT", flatCloses(3, 50), 1000))

	// 3 bars is below every component's minimum except price_position.
	if got := result.Components["momentum_decay"]; got != 0 {
		t.Errorf("expected 0 momentum for 3 bars, got %f", got)
	}
	if got := result.Components["volatility_adjusted"]; got != 0 {
		t.Errorf("expected 0 volatility for 3 bars, got %f", got)
	}
	if got := result.Components["volume_confirmation"]; got != 0 {
		t.Errorf("expected 0 volume confirmation for 3 bars, got %f", got)
	}
}

func TestMultiFactor_Deterministic(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))
	series := makeSeries("DET", rampCloses(90, 80, -0.004), 5000)

	first := scorer.ScoreTicker(series)
	second := scorer.ScoreTicker(series)
	if first.Score != second.Score {
		t.Errorf("scoring must be deterministic: %f vs %f", first.Score, second.Score)
	}
}

func TestReversion_DoubleQualityApplication(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))
	result := scorer.ScoreTicker(makeSeries("REV", rampCloses(90, 100, -0.003), 1000))

	o := result.Components["oversold_score"]
	q := result.Components["quality_filter"]
	v := result.Components["volatility_bonus"]
	want := (o*0.7 + q*0.2 + v*0.1) * q
	if math.Abs(result.Score-want) > 1e-9 {
		t.Errorf("score %f does not match blend-then-multiply %f", result.Score, want)
	}
}

func TestReversion_GentleDipOutscoresFlat(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))

	// A mild steady decline keeps the quality filter clean while pushing the
	// price below its own moving averages.
	dip := scorer.ScoreTicker(makeSeries("DIP", rampCloses(90, 100, -0.003), 1000))
	flat := scorer.ScoreTicker(makeSeries("FLAT", flatCloses(90, 100), 1000))

	if dip.Components["quality_filter"] != 1.0 {
		t.Errorf("gentle dip should pass quality cleanly, got %f", dip.Components["quality_filter"])
	}
	if dip.Components["oversold_score"] <= 0 {
		t.Errorf("dip below its MAs should register oversold, got %f", dip.Components["oversold_score"])
	}
	if dip.Score <= flat.Score {
		t.Errorf("dip should outscore flat: %f vs %f", dip.Score, flat.Score)
	}
}

func TestReversion_CrashSuppressedByQuality(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))

	// 30%+ drop inside ten bars trips the harshest quality bracket, which
	// then suppresses the blended score multiplicatively.
	closes := flatCloses(80, 100)
	price := 100.0
	for i := 70; i < 80; i++ {
		price *= 0.96
		closes[i] = price
	}
	crash := scorer.ScoreTicker(makeSeries("CRASH", closes, 1000))

	if q := crash.Components["quality_filter"]; q > 0.5 {
		t.Errorf("crash should be quality-penalized, got %f", q)
	}
	gentle := scorer.ScoreTicker(makeSeries("DIP", rampCloses(90, 100, -0.003), 1000))
	if crash.Score >= gentle.Score {
		t.Errorf("falling knife should score below a gentle dip: %f vs %f", crash.Score, gentle.Score)
	}
}

func TestReversion_UsesAdjustedClose(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))
	series := makeSeries("ADJ", flatCloses(60, 100), 1000)
	for i := range series.Bars {
		series.Bars[i].AdjustedClose = 95
	}
	result := scorer.ScoreTicker(series)
	if result.CurrentPrice != 95 {
		t.Errorf("reversion should report the adjusted close, got %f", result.CurrentPrice)
	}
}

func TestReversion_TooFewBars(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))
	result := scorer.ScoreTicker(makeSeries("THIN", flatCloses(15, 100), 1000))

	if result.Err != "" {
		t.Fatalf("thin data is scored zero, not errored: %s", result.Err)
	}
	if result.Score != 0 {
		t.Errorf("below 30 bars every component is 0, got score %f", result.Score)
	}
}

func TestScoreAll_SortsDescending(t *testing.T) {
	scorer := NewMultiFactor(testConfig(config.MethodMultiFactor))
	series := []*model.PriceSeries{
		makeSeries("UP", rampCloses(60, 100, 0.01), 1000),
		makeSeries("DOWN", rampCloses(60, 100, -0.01), 1000),
		makeSeries("FLAT", flatCloses(60, 100), 1000),
	}
	results := scorer.ScoreAll(series)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending at %d: %f > %f",
				i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].Ticker != "DOWN" {
		t.Errorf("expected the decline to rank first, got %s", results[0].Ticker)
	}
}

func TestScoreTicker_MissingData(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))
	result := scorer.ScoreTicker(&model.PriceSeries{Ticker: "EMPTY", Market: "US"})

	if result.Err == "" {
		t.Fatal("expected an error marker for empty series")
	}
	if result.Valid() {
		t.Error("missing-data result must not be valid")
	}
	if result.Ticker != "EMPTY" {
		t.Errorf("identity should survive, got %q", result.Ticker)
	}
}

func TestReversion_DecliningInstrumentWinsAllocation(t *testing.T) {
	scorer := NewReversion(testConfig(config.MethodReversion))

	// One instrument sells off steadily for its last 20 sessions on doubled
	// volume; the other two drift flat and upward.
	closes := flatCloses(100, 100)
	price := 100.0
	for i := 80; i < 100; i++ {
		price *= 1 - 0.008
		closes[i] = price
	}
	decline := makeSeries("DECLINE", closes, 1000)
	for i := 80; i < 100; i++ {
		decline.Bars[i].Volume = 2000
	}
	series := []*model.PriceSeries{
		decline,
		makeSeries("FLAT", flatCloses(100, 100), 1000),
		makeSeries("RISE", rampCloses(100, 100, 0.003), 1000),
	}

	results := scorer.ScoreAll(series)
	byTicker := map[string]model.ScoreResult{}
	for _, r := range results {
		byTicker[r.Ticker] = r
	}
	for _, other := range []string{"FLAT", "RISE"} {
		if byTicker["DECLINE"].Components["oversold_score"] <= byTicker[other].Components["oversold_score"] {
			t.Errorf("DECLINE oversold %f should exceed %s %f",
				byTicker["DECLINE"].Components["oversold_score"], other,
				byTicker[other].Components["oversold_score"])
		}
	}

	allocs := allocator.NewWithMinimum(0.05).Allocate(results, 2000)
	if len(allocs) == 0 {
		t.Fatal("expected allocations")
	}
	if allocs[0].Ticker != "DECLINE" {
		t.Errorf("expected DECLINE to take the largest allocation, got %s", allocs[0].Ticker)
	}
}

func TestNew_MethodSelection(t *testing.T) {
	if _, err := New(testConfig(config.MethodMultiFactor)); err != nil {
		t.Errorf("multi_factor: %v", err)
	}
	if _, err := New(testConfig(config.MethodReversion)); err != nil {
		t.Errorf("reversion: %v", err)
	}
	if _, err := New(testConfig("momentum")); err == nil {
		t.Error("expected error for unknown method")
	}
}
