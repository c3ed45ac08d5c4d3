package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockpiler/internal/config"
	"stockpiler/internal/scoring"
	"stockpiler/internal/store"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "stockpiler",
	Short: "Score-driven monthly stock accumulation",
	Long: `stockpiler scores a configured universe of instruments on recent price
action, splits a monthly budget across the best candidates, and backtests
the strategy against an equal-weight DCA baseline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "path to config file")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(runCmd)
}

// loadConfig loads and validates configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if cfg.TotalTickers() == 0 {
		return nil, fmt.Errorf("no tickers configured, add a tickers section to %s", cfgPath)
	}
	return cfg, nil
}

// openPipeline builds the store and scorer shared by most commands.
func openPipeline(cfg *config.Config) (*store.Store, scoring.Scorer, error) {
	st, err := store.New(cfg.Data.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	scorer, err := scoring.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init scorer: %w", err)
	}
	return st, scorer, nil
}
