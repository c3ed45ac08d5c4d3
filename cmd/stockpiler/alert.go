package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockpiler/internal/alert"
	"stockpiler/internal/notifier"
	"stockpiler/internal/recorder"
)

var (
	alertForce  bool
	alertNotify bool
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Generate this month's buy alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		now := time.Now()
		if !alert.ShouldGenerate(now) && !alertForce {
			return fmt.Errorf("today (%s) is not the alert day, use --force to generate anyway", now.Format("2006-01-02"))
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

		alerts := alert.New(cfg, scorer).Generate(series, now)
		message := notifier.FormatAlerts(alerts, cfg.Budget.Monthly)
		fmt.Println(message)

		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite unavailable, skipping alert log")
		} else {
			defer rec.Close()
			if err := rec.RecordAlerts(alerts); err != nil {
				log.Error().Err(err).Msg("record alerts")
			}
		}

		if alertNotify && cfg.Notify.SlackWebhookURL != "" {
			slack := notifier.NewSlackNotifier(cfg.Notify.SlackWebhookURL)
			if err := slack.SendWithRetry(cmd.Context(), message, 3); err != nil {
				return fmt.Errorf("notify: %w", err)
			}
		}
		return nil
	},
}

func init() {
	alertCmd.Flags().BoolVar(&alertForce, "force", false, "generate even when today is not the alert day")
	alertCmd.Flags().BoolVar(&alertNotify, "notify", false, "send the alerts to the configured Slack webhook")
}
