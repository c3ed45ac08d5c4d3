package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockpiler/internal/alert"
	"stockpiler/internal/marketdata"
	"stockpiler/internal/notifier"
	"stockpiler/internal/portfolio"
	"stockpiler/internal/recorder"
	"stockpiler/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler daemon (monthly alerts + nightly data refresh)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, scorer, err := openPipeline(cfg)
		if err != nil {
			return err
		}
		fetcher, err := marketdata.NewFetcher(cfg)
		if err != nil {
			return err
		}
		log.Info().Str("source", fetcher.Name()).Str("method", cfg.Scoring.Method).Msg("stockpiler starting")

		var notif notifier.Notifier
		if cfg.Notify.SlackWebhookURL != "" {
			notif = notifier.NewSlackNotifier(cfg.Notify.SlackWebhookURL)
		} else {
			notif = notifier.NewNoopNotifier()
		}

		var rec recorder.Recorder
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}

		tracker, err := portfolio.NewTracker(filepath.Join(cfg.Data.Dir, "portfolio.json"))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sched := scheduler.New(ctx, cfg, st, fetcher, alert.New(cfg, scorer), tracker, notif, rec)
		if err := sched.RegisterAll(); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, executing alert task now")
			go sched.RunAlertNow()
		}

		log.Info().Msg("stockpiler is running, press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("shutdown signal received, stopping")
		cancel()
		return nil
	},
}
