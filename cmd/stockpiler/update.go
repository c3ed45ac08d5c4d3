package main

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockpiler/internal/marketdata"
	"stockpiler/internal/store"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch latest price history for all configured tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.New(cfg.Data.Dir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		fetcher, err := marketdata.NewFetcher(cfg)
		if err != nil {
			return err
		}
		log.Info().Str("source", fetcher.Name()).Int("tickers", cfg.TotalTickers()).Msg("updating price data")

		markets := make([]string, 0, len(cfg.Tickers))
		for market := range cfg.Tickers {
			markets = append(markets, market)
		}
		sort.Strings(markets)

		var failed int
		for _, market := range markets {
			for _, ticker := range cfg.Tickers[market] {
				series, err := fetcher.FetchDaily(cmd.Context(), ticker, market)
				if err != nil {
					log.Error().Err(err).Str("ticker", ticker).Str("market", market).Msg("fetch failed")
					failed++
					continue
				}
				if err := st.SaveSeries(series); err != nil {
					return fmt.Errorf("save %s: %w", ticker, err)
				}
				log.Info().Str("ticker", ticker).Str("market", market).Int("bars", series.Len()).Msg("updated")
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tickers failed to update", failed, cfg.TotalTickers())
		}
		return nil
	},
}
