package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockpiler/internal/backtest"
	"stockpiler/internal/notifier"
	"stockpiler/internal/recorder"
)

var backtestName string

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the strategy over the configured date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backtest.StartDate == "" || cfg.Backtest.EndDate == "" {
			return fmt.Errorf("backtest.start_date and backtest.end_date must be set")
		}
		st, scorer, err := openPipeline(cfg)
		if err != nil {
			return err
		}
		series, err := st.LoadAll(cfg.Tickers)
		if err != nil {
			return err
		}

		result, err := backtest.New(cfg, scorer).Run(series)
		if err != nil {
			return err
		}

		fmt.Println(notifier.FormatBacktestSummary(result))

		path, err := st.SaveBacktest(result, backtestName)
		if err != nil {
			return fmt.Errorf("save backtest: %w", err)
		}
		log.Info().Str("path", path).Str("run_id", result.RunID).Msg("backtest saved")

		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite unavailable, skipping investment log")
			return nil
		}
		defer rec.Close()
		if err := rec.RecordInvestments(result.RunID, result.Investments); err != nil {
			log.Error().Err(err).Msg("record investments")
		}
		return nil
	},
}

func init() {
	backtestCmd.Flags().StringVar(&backtestName, "name", "backtest", "name prefix for the saved result file")
}
