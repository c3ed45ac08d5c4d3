package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"stockpiler/internal/backtest"
	"stockpiler/internal/model"
)

const dateLayout = "2006-01-02"

var priceHeader = []string{"date", "open", "high", "low", "close", "volume", "adjusted_close"}

// Store manages CSV persistence of price series, score runs, and backtest
// results under a single data directory.
type Store struct {
	pricesDir    string
	scoresDir    string
	backtestsDir string
}

// New creates a Store rooted at dataDir, creating subdirectories as needed.
func New(dataDir string) (*Store, error) {
	s := &Store{
		pricesDir:    filepath.Join(dataDir, "prices"),
		scoresDir:    filepath.Join(dataDir, "scores"),
		backtestsDir: filepath.Join(dataDir, "backtests"),
	}
	for _, dir := range []string{s.pricesDir, s.scoresDir, s.backtestsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return s, nil
}

func (s *Store) pricePath(ticker, market string) string {
	return filepath.Join(s.pricesDir, fmt.Sprintf("%s_%s.csv", ticker, market))
}

// LoadSeries reads a ticker's price data. A missing file yields (nil, nil):
// absence is a per-instrument skip for callers, never fatal.
func (s *Store) LoadSeries(ticker, market string) (*model.PriceSeries, error) {
	path := s.pricePath(ticker, market)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("ticker", ticker).Str("market", market).
				Msg("no price data file found")
			return nil, nil
		}
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price file %s: %w", path, err)
	}

	series := &model.PriceSeries{Ticker: ticker, Market: market}
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == "date" {
			continue
		}
		bar, err := parseBar(rec)
		if err != nil {
			log.Warn().Str("ticker", ticker).Int("row", i).Err(err).
				Msg("skipping malformed price row")
			continue
		}
		series.Bars = append(series.Bars, bar)
	}

	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	series.Bars = dedupeDates(series.Bars)
	return series, nil
}

// SaveSeries writes a series as CSV, sorted ascending by date.
func (s *Store) SaveSeries(series *model.PriceSeries) error {
	bars := make([]model.PriceBar, len(series.Bars))
	copy(bars, series.Bars)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	f, err := os.Create(s.pricePath(series.Ticker, series.Market))
	if err != nil {
		return fmt.Errorf("create price file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(priceHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Date.Format(dateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
			formatFloat(b.AdjustedClose),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write price file: %w", err)
	}
	log.Info().Str("ticker", series.Ticker).Int("records", len(bars)).
		Msg("saved price data")
	return nil
}

// LoadAll loads every configured ticker's series in deterministic
// (market, config) order, skipping instruments without data.
func (s *Store) LoadAll(tickers map[string][]string) ([]*model.PriceSeries, error) {
	markets := make([]string, 0, len(tickers))
	for market := range tickers {
		markets = append(markets, market)
	}
	sort.Strings(markets)

	var series []*model.PriceSeries
	for _, market := range markets {
		for _, ticker := range tickers[market] {
			ps, err := s.LoadSeries(ticker, market)
			if err != nil {
				return nil, err
			}
			if ps == nil || ps.Len() == 0 {
				continue
			}
			series = append(series, ps)
		}
	}
	return series, nil
}

// SaveScores writes a score run as CSV and returns the file path.
func (s *Store) SaveScores(results []model.ScoreResult) (string, error) {
	name := fmt.Sprintf("scores_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.scoresDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scores file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"ticker", "market", "score", "current_price", "date", "data_points", "error"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range results {
		row := []string{
			r.Ticker,
			r.Market,
			strconv.FormatFloat(r.Score, 'f', 6, 64),
			formatFloat(r.CurrentPrice),
			r.AsOf.Format(dateLayout),
			strconv.Itoa(r.DataPoints),
			r.Err,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write scores file: %w", err)
	}
	return path, nil
}

// SaveBacktest writes a backtest's investment events as CSV and returns the
// file path. An empty name falls back to a timestamped one.
func (s *Store) SaveBacktest(result *backtest.Result, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("backtest_%s", time.Now().Format("2006-01-02_15-04"))
	}
	path := filepath.Join(s.backtestsDir, name+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backtest file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"date", "ticker", "market", "shares", "price", "amount", "score"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, inv := range result.Investments {
		row := []string{
			inv.Date.Format(dateLayout),
			inv.Ticker,
			inv.Market,
			formatFloat(inv.Shares),
			formatFloat(inv.Price),
			formatFloat(inv.Amount),
			strconv.FormatFloat(inv.Score, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write backtest file: %w", err)
	}
	log.Info().Str("path", path).Int("investments", len(result.Investments)).
		Msg("saved backtest results")
	return path, nil
}

func parseBar(rec []string) (model.PriceBar, error) {
	if len(rec) < 7 {
		return model.PriceBar{}, fmt.Errorf("expected 7 columns, got %d", len(rec))
	}
	date, err := time.Parse(dateLayout, rec[0])
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("parse date: %w", err)
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("parse column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	bar := model.PriceBar{
		Date:          date,
		Open:          vals[0],
		High:          vals[1],
		Low:           vals[2],
		Close:         vals[3],
		Volume:        vals[4],
		AdjustedClose: vals[5],
	}
	if bar.Close <= 0 {
		return model.PriceBar{}, fmt.Errorf("non-positive close %.4f", bar.Close)
	}
	if bar.Volume < 0 {
		return model.PriceBar{}, fmt.Errorf("negative volume %.0f", bar.Volume)
	}
	return bar, nil
}

func dedupeDates(bars []model.PriceBar) []model.PriceBar {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Date.Equal(bars[i-1].Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
