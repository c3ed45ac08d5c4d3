package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Methods selectable via scoring.method.
const (
	MethodMultiFactor = "multi_factor"
	MethodReversion   = "reversion"
)

// Weights holds the multi-factor component weights. They must sum to 1.0
// for the multi-factor method; the reversion scorer carries its own fixed
// weights and ignores these.
type Weights struct {
	PricePosition      float64 `yaml:"price_position"`
	MomentumDecay      float64 `yaml:"momentum_decay"`
	VolatilityAdjusted float64 `yaml:"volatility_adjusted"`
	VolumeConfirmation float64 `yaml:"volume_confirmation"`
}

// Sum returns the total of all component weights.
func (w Weights) Sum() float64 {
	return w.PricePosition + w.MomentumDecay + w.VolatilityAdjusted + w.VolumeConfirmation
}

// Config holds all application configuration.
type Config struct {
	Budget struct {
		Monthly float64 `yaml:"monthly"`
	} `yaml:"budget"`
	Scoring struct {
		Method           string  `yaml:"method"`
		LookbackDays     int     `yaml:"lookback_days"`
		Weights          Weights `yaml:"weights"`
		MomentumDecay    float64 `yaml:"momentum_decay_factor"`
		VolatilityWindow int     `yaml:"volatility_window"`
	} `yaml:"scoring"`
	Allocation struct {
		MinimumPct float64 `yaml:"minimum_pct"` // percent, e.g. 5.0
	} `yaml:"allocation"`
	Alerts struct {
		Threshold    float64 `yaml:"threshold"`
		MaxPerPeriod int     `yaml:"max_per_period"`
		Cron         string  `yaml:"cron"`
	} `yaml:"alerts"`
	Backtest struct {
		StartDate string `yaml:"start_date"`
		EndDate   string `yaml:"end_date"`
	} `yaml:"backtest"`
	Data struct {
		Dir             string `yaml:"dir"`
		Source          string `yaml:"source"` // "yahoo" or "alpha_vantage"
		AlphaVantageKey string `yaml:"alpha_vantage_key"`
		RefreshCron     string `yaml:"refresh_cron"`
	} `yaml:"data"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Notify struct {
		SlackWebhookURL string `yaml:"slack_webhook_url"`
	} `yaml:"notify"`
	Tickers map[string][]string `yaml:"tickers"` // market -> tickers
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MONTHLY_BUDGET"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Budget.Monthly = budget
		}
	}
	if v := os.Getenv("SCORING_METHOD"); v != "" {
		cfg.Scoring.Method = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Data.AlphaVantageKey = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.SlackWebhookURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Budget.Monthly == 0 {
		c.Budget.Monthly = 2000
	}
	if c.Scoring.Method == "" {
		c.Scoring.Method = MethodReversion
	}
	if c.Scoring.LookbackDays == 0 {
		c.Scoring.LookbackDays = 90
	}
	if c.Scoring.Weights == (Weights{}) {
		c.Scoring.Weights = Weights{
			PricePosition:      0.4,
			MomentumDecay:      0.3,
			VolatilityAdjusted: 0.2,
			VolumeConfirmation: 0.1,
		}
	}
	if c.Scoring.MomentumDecay == 0 {
		c.Scoring.MomentumDecay = 0.95
	}
	if c.Scoring.VolatilityWindow == 0 {
		c.Scoring.VolatilityWindow = 30
	}
	if c.Allocation.MinimumPct == 0 {
		c.Allocation.MinimumPct = 5.0
	}
	if c.Alerts.Threshold == 0 {
		c.Alerts.Threshold = 0.3
	}
	if c.Alerts.MaxPerPeriod == 0 {
		c.Alerts.MaxPerPeriod = 8
	}
	if c.Alerts.Cron == "" {
		// 09:00 on the 8th of each month, matching the backtest cadence.
		c.Alerts.Cron = "0 0 9 8 * *"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.Source == "" {
		c.Data.Source = "yahoo"
	}
	if c.Data.RefreshCron == "" {
		c.Data.RefreshCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockpiler.db"
	}
}

// Validate checks configuration correctness. Must be called before any
// scoring runs; a failure here is fatal, never per-record.
func (c *Config) Validate() error {
	if c.Budget.Monthly <= 0 {
		return fmt.Errorf("budget.monthly must be positive, got %.2f", c.Budget.Monthly)
	}
	if c.Scoring.LookbackDays <= 0 {
		return fmt.Errorf("scoring.lookback_days must be positive, got %d", c.Scoring.LookbackDays)
	}
	switch c.Scoring.Method {
	case MethodMultiFactor:
		// The reversion scorer carries fixed internal weights; only the
		// multi-factor weights are user-supplied and need the sum check.
		if sum := c.Scoring.Weights.Sum(); math.Abs(sum-1.0) > 0.01 {
			return fmt.Errorf("scoring.weights sum to %.3f, should sum to 1.0", sum)
		}
	case MethodReversion:
	default:
		return fmt.Errorf("scoring.method must be %q or %q, got %q",
			MethodMultiFactor, MethodReversion, c.Scoring.Method)
	}
	if c.Scoring.MomentumDecay <= 0 || c.Scoring.MomentumDecay > 1 {
		return fmt.Errorf("scoring.momentum_decay_factor must be in (0,1], got %.3f", c.Scoring.MomentumDecay)
	}
	if c.Scoring.VolatilityWindow <= 1 {
		return fmt.Errorf("scoring.volatility_window must be > 1, got %d", c.Scoring.VolatilityWindow)
	}
	if c.Allocation.MinimumPct <= 0 || c.Allocation.MinimumPct >= 100 {
		return fmt.Errorf("allocation.minimum_pct must be in (0,100), got %.1f", c.Allocation.MinimumPct)
	}
	if c.Alerts.Threshold < 0 || c.Alerts.Threshold > 1 {
		return fmt.Errorf("alerts.threshold must be in [0,1], got %.3f", c.Alerts.Threshold)
	}
	if c.Alerts.MaxPerPeriod <= 0 {
		return fmt.Errorf("alerts.max_per_period must be positive, got %d", c.Alerts.MaxPerPeriod)
	}
	if c.Backtest.StartDate != "" || c.Backtest.EndDate != "" {
		start, err := c.BacktestStart()
		if err != nil {
			return fmt.Errorf("backtest.start_date: %w", err)
		}
		end, err := c.BacktestEnd()
		if err != nil {
			return fmt.Errorf("backtest.end_date: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("backtest.end_date %s precedes start_date %s",
				c.Backtest.EndDate, c.Backtest.StartDate)
		}
	}
	return nil
}

// BacktestStart parses the configured backtest start date.
func (c *Config) BacktestStart() (time.Time, error) {
	return time.Parse(dateLayout, c.Backtest.StartDate)
}

// BacktestEnd parses the configured backtest end date.
func (c *Config) BacktestEnd() (time.Time, error) {
	return time.Parse(dateLayout, c.Backtest.EndDate)
}

// TotalTickers counts configured tickers across all markets.
func (c *Config) TotalTickers() int {
	total := 0
	for _, list := range c.Tickers {
		total += len(list)
	}
	return total
}

// MinimumAllocation returns the minimum allocation as a fraction (0.05 for 5%).
func (c *Config) MinimumAllocation() float64 {
	return c.Allocation.MinimumPct / 100.0
}
