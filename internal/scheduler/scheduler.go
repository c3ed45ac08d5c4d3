package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"stockpiler/internal/alert"
	"stockpiler/internal/config"
	"stockpiler/internal/marketdata"
	"stockpiler/internal/notifier"
	"stockpiler/internal/portfolio"
	"stockpiler/internal/recorder"
	"stockpiler/internal/store"
)

// Scheduler manages the cron tasks of the long-running daemon: the monthly
// alert run and the nightly data refresh.
type Scheduler struct {
	Cron      *cron.Cron
	Cfg       *config.Config
	Store     *store.Store
	Fetcher   marketdata.Fetcher
	Generator *alert.Generator
	Tracker   *portfolio.Tracker
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// New creates a Scheduler wired to all collaborators.
func New(ctx context.Context, cfg *config.Config, st *store.Store, fetcher marketdata.Fetcher,
	gen *alert.Generator, tracker *portfolio.Tracker, notif notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Cfg:       cfg,
		Store:     st,
		Fetcher:   fetcher,
		Generator: gen,
		Tracker:   tracker,
		Notifier:  notif,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the alert and refresh tasks.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.Cfg.Alerts.Cron, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	if _, err := s.Cron.AddFunc(s.Cfg.Data.RefreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunAlertNow executes the alert task immediately (manual trigger).
func (s *Scheduler) RunAlertNow() {
	s.alertTask()
}

// RunRefreshNow executes the data refresh immediately (manual trigger).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) alertTask() {
	log.Info().Msg("running alert task")

	series, err := s.Store.LoadAll(s.Cfg.Tickers)
	if err != nil {
		log.Error().Err(err).Msg("alert task: load series")
		s.trySend(fmt.Sprintf(":x: Alert run failed loading data: %v", err))
		return
	}
	if len(series) == 0 {
		log.Warn().Msg("alert task: no price data on disk, run a refresh first")
		return
	}

	alerts := s.Generator.Generate(series, time.Now())
	if err := s.Recorder.RecordAlerts(alerts); err != nil {
		log.Error().Err(err).Msg("record alerts")
	}
	s.Tracker.ApplyAlerts(alerts)

	s.trySend(notifier.FormatAlerts(alerts, s.Cfg.Budget.Monthly))
}

func (s *Scheduler) refreshTask() {
	log.Info().Str("source", s.Fetcher.Name()).Msg("running data refresh")

	markets := make([]string, 0, len(s.Cfg.Tickers))
	for market := range s.Cfg.Tickers {
		markets = append(markets, market)
	}
	sort.Strings(markets)

	var fetched, failed int
	for _, market := range markets {
		for _, ticker := range s.Cfg.Tickers[market] {
			series, err := s.Fetcher.FetchDaily(s.Ctx, ticker, market)
			if err != nil {
				log.Error().Err(err).Str("ticker", ticker).Str("market", market).Msg("fetch failed")
				failed++
				continue
			}
			if err := s.Store.SaveSeries(series); err != nil {
				log.Error().Err(err).Str("ticker", ticker).Msg("save series")
				failed++
				continue
			}
			fetched++
		}
	}
	log.Info().Int("fetched", fetched).Int("failed", failed).Msg("data refresh done")
	if failed > 0 {
		s.trySend(fmt.Sprintf(":warning: Data refresh: %d fetched, %d failed", fetched, failed))
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
