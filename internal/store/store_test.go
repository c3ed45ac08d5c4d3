package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpiler/internal/model"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func sampleSeries() *model.PriceSeries {
	return &model.PriceSeries{
		Ticker: "VOO",
		Market: "US",
		Bars: []model.PriceBar{
			{Date: day("2024-06-04"), Open: 101, High: 103, Low: 100, Close: 102.5, Volume: 2000, AdjustedClose: 102.5},
			{Date: day("2024-06-03"), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1500, AdjustedClose: 101},
			{Date: day("2024-06-05"), Open: 102, High: 104, Low: 101.5, Close: 103.25, Volume: 1800, AdjustedClose: 103.1},
		},
	}
}

func TestSaveAndLoadSeries_RoundTrip(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.SaveSeries(sampleSeries()))

	loaded, err := st.LoadSeries("VOO", "US")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, 3, loaded.Len())

	// Saved and loaded bars come back date-sorted regardless of input order.
	assert.Equal(t, day("2024-06-03"), loaded.Bars[0].Date)
	assert.Equal(t, day("2024-06-05"), loaded.Bars[2].Date)
	assert.Equal(t, 103.25, loaded.Bars[2].Close)
	assert.Equal(t, 103.1, loaded.Bars[2].AdjustedClose)
	assert.Equal(t, 1500.0, loaded.Bars[0].Volume)
}

func TestLoadSeries_MissingFileIsSkip(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	series, err := st.LoadSeries("GHOST", "US")
	assert.NoError(t, err)
	assert.Nil(t, series)
}

func TestLoadSeries_SkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	csv := "date,open,high,low,close,volume,adjusted_close\n" +
		"2024-06-03,100,102,99,101,1500,101\n" +
		"2024-06-04,100,102,99,-5,1500,101\n" + // non-positive close
		"not-a-date,100,102,99,101,1500,101\n" +
		"2024-06-05,100,102,99,abc,1500,101\n" + // unparseable close
		"2024-06-06,100,102,99,103,1500,103\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prices", "BAD_US.csv"), []byte(csv), 0644))

	series, err := st.LoadSeries("BAD", "US")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, day("2024-06-03"), series.Bars[0].Date)
	assert.Equal(t, day("2024-06-06"), series.Bars[1].Date)
}

func TestLoadSeries_DedupesDates(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	csv := "date,open,high,low,close,volume,adjusted_close\n" +
		"2024-06-03,100,102,99,101,1500,101\n" +
		"2024-06-03,100,102,99,150,1500,150\n" +
		"2024-06-04,100,102,99,102,1500,102\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prices", "DUP_US.csv"), []byte(csv), 0644))

	series, err := st.LoadSeries("DUP", "US")
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	// First occurrence wins.
	assert.Equal(t, 101.0, series.Bars[0].Close)
}

func TestLoadAll_DeterministicOrderAndSkips(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	us := sampleSeries()
	require.NoError(t, st.SaveSeries(us))
	hk := &model.PriceSeries{Ticker: "2800.HK", Market: "HK", Bars: us.Bars}
	require.NoError(t, st.SaveSeries(hk))

	all, err := st.LoadAll(map[string][]string{
		"US": {"VOO", "MISSING"},
		"HK": {"2800.HK"},
	})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Markets iterate sorted, so HK precedes US.
	assert.Equal(t, "2800.HK", all[0].Ticker)
	assert.Equal(t, "VOO", all[1].Ticker)
}

func TestSaveScores(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := st.SaveScores([]model.ScoreResult{
		{Ticker: "VOO", Market: "US", Score: 0.512345, CurrentPrice: 420.69, AsOf: day("2024-06-05"), DataPoints: 90},
		{Ticker: "BAD", Market: "US", Err: "no price data available"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "ticker,market,score,current_price,date,data_points,error")
	assert.Contains(t, content, "VOO,US,0.512345,420.69,2024-06-05,90,")
	assert.Contains(t, content, "no price data available")
}
