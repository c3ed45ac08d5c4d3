package notifier

import (
	"strings"
	"testing"
	"time"

	"stockpiler/internal/alert"
	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

func TestFormatAlerts(t *testing.T) {
	alerts := []alert.Alert{
		{
			AlertDate:     time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
			Ticker:        "VOO",
			Market:        "US",
			Action:        "BUY",
			Price:         512.34,
			Shares:        2.93,
			Amount:        1501.16,
			AllocationPct: 75.1,
			Score:         0.612,
		},
		{
			AlertDate:     time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
			Ticker:        "QQQ",
			Market:        "US",
			Action:        "BUY",
			Price:         450.00,
			Shares:        1.11,
			Amount:        499.50,
			AllocationPct: 24.9,
			Score:         0.401,
		},
	}
	msg := FormatAlerts(alerts, 2000)

	for _, want := range []string{"2024-06-08", "VOO", "QQQ", "BUY", "1,501.16", "2 instruments"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatAlerts_Empty(t *testing.T) {
	msg := FormatAlerts(nil, 2000)
	if !strings.Contains(msg, "No instruments passed") {
		t.Errorf("expected the empty-run notice, got:\n%s", msg)
	}
}

func TestFormatBacktestSummary(t *testing.T) {
	result := &backtest.Result{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Metrics: backtest.Metrics{
			TotalInvested:       34000,
			FinalPortfolioValue: 39100,
			TotalReturnPct:      15.0,
			AnnualizedReturnPct: 10.4,
			NumberOfInvestments: 51,
			UniqueTickers:       4,
			DCAComparison:       backtest.DCAComparison{ReturnPct: 12.2},
			OutperformanceVsDCA: 952.0,
		},
	}
	msg := FormatBacktestSummary(result)
	for _, want := range []string{"2023-01-01", "34,000", "39,100", "+15.00%", "+10.40% annualized", "+12.20%"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatScoreTable(t *testing.T) {
	results := []model.ScoreResult{
		{Ticker: "VOO", Market: "US", Score: 0.612, CurrentPrice: 512.34, DataPoints: 90},
		{Ticker: "BAD", Market: "US", Err: "no price data available"},
	}
	msg := FormatScoreTable(results)
	if !strings.Contains(msg, "0.612") || !strings.Contains(msg, "unavailable") {
		t.Errorf("unexpected table:\n%s", msg)
	}
}
