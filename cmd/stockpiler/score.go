package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockpiler/internal/notifier"
	"stockpiler/internal/recorder"
)

var scoreSave bool

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every configured ticker on current data",
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

		results := scorer.ScoreAll(series)
		fmt.Println(notifier.FormatScoreTable(results))

		if scoreSave {
			path, err := st.SaveScores(results)
			if err != nil {
				return fmt.Errorf("save scores: %w", err)
			}
			log.Info().Str("path", path).Msg("scores saved")

			rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
			if err != nil {
				log.Warn().Err(err).Msg("sqlite unavailable, skipping snapshot")
			} else {
				defer rec.Close()
				if err := rec.RecordScores(results); err != nil {
					log.Error().Err(err).Msg("record scores")
				}
			}
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist scores to CSV and SQLite")
}
