package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"stockpiler/internal/alert"
	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

// FormatAlerts formats a batch of purchase alerts into a Slack message.
func FormatAlerts(alerts []alert.Alert, budget float64) string {
	var b strings.Builder

	if len(alerts) == 0 {
		b.WriteString("*Monthly purchase alerts*\n")
		b.WriteString("No instruments passed the score threshold this month.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("*Monthly purchase alerts* | %s\n", alerts[0].AlertDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Budget: $%s\n\n", humanize.CommafWithDigits(budget, 2)))

	total := 0.0
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("• *%s* (%s): %s %.2f shares @ $%s = $%s (%.1f%%, score %.3f)\n",
			a.Ticker, a.Market, a.Action, a.Shares,
			humanize.CommafWithDigits(a.Price, 2),
			humanize.CommafWithDigits(a.Amount, 2),
			a.AllocationPct, a.Score))
		total += a.Amount
	}
	b.WriteString(fmt.Sprintf("\nTotal: $%s across %d instruments", humanize.CommafWithDigits(total, 2), len(alerts)))
	return b.String()
}

// FormatBacktestSummary formats backtest metrics for display.
func FormatBacktestSummary(result *backtest.Result) string {
	m := result.Metrics
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*Backtest* | %s to %s\n\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Invested: $%s\n", humanize.CommafWithDigits(m.TotalInvested, 2)))
	b.WriteString(fmt.Sprintf("Final value: $%s\n", humanize.CommafWithDigits(m.FinalPortfolioValue, 2)))
	b.WriteString(fmt.Sprintf("Return: %+.2f%% (%+.2f%% annualized)\n", m.TotalReturnPct, m.AnnualizedReturnPct))
	b.WriteString(fmt.Sprintf("Purchases: %d | Instruments: %d\n", m.NumberOfInvestments, m.UniqueTickers))
	b.WriteString(fmt.Sprintf("\nDCA baseline: %+.2f%% return\n", m.DCAComparison.ReturnPct))
	b.WriteString(fmt.Sprintf("Outperformance vs DCA: $%s", humanize.CommafWithDigits(m.OutperformanceVsDCA, 2)))
	return b.String()
}

// FormatScoreTable formats scoring results, best first.
func FormatScoreTable(results []model.ScoreResult) string {
	var b strings.Builder
	b.WriteString("*Current scores*\n\n")

	for i, r := range results {
		if r.Err != "" {
			b.WriteString(fmt.Sprintf("%2d. %s (%s): unavailable (%s)\n", i+1, r.Ticker, r.Market, r.Err))
			continue
		}
		b.WriteString(fmt.Sprintf("%2d. %s (%s): %.3f @ $%s (%s bars)\n",
			i+1, r.Ticker, r.Market, r.Score,
			humanize.CommafWithDigits(r.CurrentPrice, 2),
			humanize.Comma(int64(r.DataPoints))))
	}
	if len(results) == 0 {
		b.WriteString("No data loaded.")
	}
	return b.String()
}
