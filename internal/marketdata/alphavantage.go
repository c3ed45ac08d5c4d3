package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"stockpiler/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches adjusted daily history from the Alpha Vantage API.
// The free tier allows 5 calls/minute, so requests are limited to one every
// 12 seconds.
type AlphaVantage struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAlphaVantage creates an Alpha Vantage fetcher.
func NewAlphaVantage(apiKey string) *AlphaVantage {
	return &AlphaVantage{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

func (f *AlphaVantage) Name() string { return "alpha_vantage" }

type alphaVantageResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

func (f *AlphaVantage) FetchDaily(ctx context.Context, ticker, market string) (*model.PriceSeries, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	params.Set("symbol", ticker)
	params.Set("outputsize", "full")
	params.Set("apikey", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, alphaVantageBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage: status %d", resp.StatusCode)
	}

	var parsed alphaVantageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("alpha vantage decode: %w", err)
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage api error: %s", parsed.ErrorMessage)
	}
	if parsed.Note != "" {
		return nil, fmt.Errorf("alpha vantage rate limit: %s", parsed.Note)
	}
	if len(parsed.TimeSeries) == 0 {
		return nil, fmt.Errorf("alpha vantage: no data for %s", ticker)
	}

	series := &model.PriceSeries{Ticker: ticker, Market: market}
	for dateStr, fields := range parsed.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		bar := model.PriceBar{
			Date:          date,
			Open:          parseField(fields, "1. open"),
			High:          parseField(fields, "2. high"),
			Low:           parseField(fields, "3. low"),
			Close:         parseField(fields, "4. close"),
			AdjustedClose: parseField(fields, "5. adjusted close"),
			Volume:        parseField(fields, "6. volume"),
		}
		if bar.Close <= 0 {
			continue
		}
		series.Bars = append(series.Bars, bar)
	}
	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	return series, nil
}

func parseField(fields map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(fields[key], 64)
	if err != nil {
		return 0
	}
	return v
}
