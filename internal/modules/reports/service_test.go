package reports

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/config"
	"coinfolio/internal/modules/portfolio"
	"coinfolio/pkg/logger"
)

type fakeMarketData struct {
	series map[string][]portfolio.PricePoint
	quotes map[string]*coingecko.SpotQuote
}

func (f *fakeMarketData) FetchAlignedSeries(_ context.Context, assetIDs []string, _ int) (*portfolio.AlignedPriceTable, error) {
	sub := make(map[string][]portfolio.PricePoint, len(assetIDs))
	for _, id := range assetIDs {
		sub[id] = f.series[id]
	}
	return portfolio.Align(assetIDs, sub)
}

func (f *fakeMarketData) CurrentPrice(_ context.Context, assetID string) (*coingecko.SpotQuote, error) {
	return f.quotes[assetID], nil
}

func trendingSeries(start, step float64, n int) []portfolio.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]portfolio.PricePoint, n)
	for i := range out {
		out[i] = portfolio.PricePoint{Time: base.AddDate(0, 0, i), Price: start + step*float64(i)}
	}
	return out
}

func TestGenerate_WritesReportAndChart(t *testing.T) {
	data := &fakeMarketData{
		series: map[string][]portfolio.PricePoint{
			"bitcoin":  trendingSeries(40000, 100, 70),
			"ethereum": trendingSeries(2500, 5, 70),
		},
		quotes: map[string]*coingecko.SpotQuote{
			"bitcoin":  {CoinID: "bitcoin", Price: 46900, Change24h: 1.25},
			"ethereum": {CoinID: "ethereum", Price: 2845, Change24h: -0.40},
		},
	}

	dir := t.TempDir()
	svc := NewService(data, nil, dir, logger.New(logger.Config{Level: "error"}))
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC) }

	specs := []config.PortfolioSpec{{
		Name:      "core",
		Assets:    []string{"bitcoin", "ethereum"},
		Weights:   []float64{0.6, 0.4},
		Frequency: "weekly",
		Days:      70,
	}}

	report, err := svc.Generate(context.Background(), specs)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "daily_report_2024-03-15.txt"), report.TextPath)
	require.Len(t, report.ChartPaths, 1)
	assert.Empty(t, report.Uploaded)

	text, err := os.ReadFile(report.TextPath)
	require.NoError(t, err)
	body := string(text)

	assert.Contains(t, body, "SECTION 1: INDIVIDUAL ASSET ANALYSIS")
	assert.Contains(t, body, "Asset: BITCOIN")
	assert.Contains(t, body, "$46900.00 (+1.25%)")
	// A steady uptrend keeps the short SMA above the long one.
	assert.Contains(t, body, "SMA Signal (20/50): BUY")

	assert.Contains(t, body, "SECTION 2: PORTFOLIO PERFORMANCE")
	assert.Contains(t, body, "Portfolio: core (rebalanced weekly)")
	assert.Contains(t, body, "Sharpe Ratio:")
	assert.Contains(t, body, "QUANTITY DRIFT SINCE START:")

	png, err := os.ReadFile(report.ChartPaths[0])
	require.NoError(t, err)
	require.True(t, len(png) > 8)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"), "chart should be a PNG")
}

func TestGenerate_NoPortfolios(t *testing.T) {
	svc := NewService(&fakeMarketData{}, nil, t.TempDir(), logger.New(logger.Config{Level: "error"}))
	_, err := svc.Generate(context.Background(), nil)
	require.Error(t, err)
}

func TestGenerate_ShortHistoryDowngradesSignal(t *testing.T) {
	data := &fakeMarketData{
		series: map[string][]portfolio.PricePoint{
			"bitcoin": trendingSeries(40000, 100, 10),
		},
		quotes: map[string]*coingecko.SpotQuote{
			"bitcoin": {CoinID: "bitcoin", Price: 40900, Change24h: 0.5},
		},
	}

	svc := NewService(data, nil, t.TempDir(), logger.New(logger.Config{Level: "error"}))
	specs := []config.PortfolioSpec{{
		Name:      "solo",
		Assets:    []string{"bitcoin"},
		Weights:   []float64{1.0},
		Frequency: "none",
		Days:      10,
	}}

	report, err := svc.Generate(context.Background(), specs)
	require.NoError(t, err)

	text, err := os.ReadFile(report.TextPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "SMA Signal: N/A")
}
