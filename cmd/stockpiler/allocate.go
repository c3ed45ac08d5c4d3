package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stockpiler/internal/allocator"
)

var (
	allocateBudget float64
	allocateJSON   bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split the monthly budget across the best-scoring tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, scorer, err := openPipeline(cfg)
		if err != nil {
			return err
		}
		series, err := st.LoadAll(cfg.Tickers)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			return fmt.Errorf("no price data found, run `stockpiler update` first")
		}

		budget := cfg.Budget.Monthly
		if allocateBudget > 0 {
			budget = allocateBudget
		}

		results := scorer.ScoreAll(series)
		comparison := allocator.New(cfg).Compare(results, series, budget)

		if allocateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(comparison)
		}

		fmt.Printf("Budget: $%s\n\n", humanize.CommafWithDigits(budget, 2))
		for _, a := range comparison.ScoreBased {
			fmt.Printf("%-8s %-6s %5.1f%%  %8.2f shares @ $%-10s = $%s (score %.3f)\n",
				a.Ticker, a.Market, a.AllocationPct*100, a.Shares,
				humanize.CommafWithDigits(a.CurrentPrice, 2),
				humanize.CommafWithDigits(a.ActualAmount, 2), a.Score)
		}
		fmt.Printf("\nTotal invested: $%s of $%s\n",
			humanize.CommafWithDigits(comparison.TotalInvested, 2),
			humanize.CommafWithDigits(budget, 2))
		c := comparison.Concentration
		fmt.Printf("Concentration: HHI %.3f, max %.1f%%, top-3 %.1f%%\n",
			c.HerfindahlIndex, c.MaxAllocation*100, c.Top3Concentration*100)
		fmt.Printf("DCA baseline: $%s per ticker across %d tickers\n",
			humanize.CommafWithDigits(comparison.DCA.PerTicker, 2), comparison.DCA.NumTickers)
		return nil
	},
}

func init() {
	allocateCmd.Flags().Float64Var(&allocateBudget, "budget", 0, "override the configured monthly budget")
	allocateCmd.Flags().BoolVar(&allocateJSON, "json", false, "emit the full comparison as JSON")
}
