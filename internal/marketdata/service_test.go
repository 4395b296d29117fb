package marketdata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinfolio/internal/clientdata"
	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/modules/portfolio"
	"coinfolio/pkg/logger"
)

type fakeFetcher struct {
	charts     map[string][]portfolio.PricePoint
	quotes     map[string]*coingecko.SpotQuote
	chartCalls int
	quoteCalls int
}

func (f *fakeFetcher) GetMarketChart(_ context.Context, coinID string, _ int) ([]portfolio.PricePoint, error) {
	f.chartCalls++
	points, ok := f.charts[coinID]
	if !ok {
		return nil, assert.AnError
	}
	return points, nil
}

func (f *fakeFetcher) GetSimplePrice(_ context.Context, coinID string) (*coingecko.SpotQuote, error) {
	f.quoteCalls++
	quote, ok := f.quotes[coinID]
	if !ok {
		return nil, assert.AnError
	}
	return quote, nil
}

func seriesOf(prices ...float64) []portfolio.PricePoint {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]portfolio.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = portfolio.PricePoint{Time: base.AddDate(0, 0, i), Price: p}
	}
	return out
}

func newCacheRepo(t *testing.T) *clientdata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestFetchAlignedSeries(t *testing.T) {
	fetcher := &fakeFetcher{charts: map[string][]portfolio.PricePoint{
		"bitcoin":  seriesOf(42000, 43000, 41000),
		"ethereum": seriesOf(2200, 2250, 2100),
	}}
	svc := New(fetcher, nil, logger.New(logger.Config{Level: "error"}))

	table, err := svc.FetchAlignedSeries(context.Background(), []string{"bitcoin", "ethereum"}, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, table.Assets)
	assert.Equal(t, 3, table.NumDates())
}

func TestFetchAlignedSeries_UpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{charts: map[string][]portfolio.PricePoint{
		"bitcoin": seriesOf(42000, 43000),
	}}
	svc := New(fetcher, nil, logger.New(logger.Config{Level: "error"}))

	_, err := svc.FetchAlignedSeries(context.Background(), []string{"bitcoin", "missing"}, 30)
	require.Error(t, err)
}

func TestFetchAlignedSeries_CacheAvoidsRefetch(t *testing.T) {
	fetcher := &fakeFetcher{charts: map[string][]portfolio.PricePoint{
		"bitcoin": seriesOf(42000, 43000, 44000),
	}}
	svc := New(fetcher, newCacheRepo(t), logger.New(logger.Config{Level: "error"}))

	_, err := svc.FetchAlignedSeries(context.Background(), []string{"bitcoin"}, 30)
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.chartCalls)

	table, err := svc.FetchAlignedSeries(context.Background(), []string{"bitcoin"}, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.chartCalls, "second call within TTL must hit the cache")
	assert.Equal(t, 3, table.NumDates())

	// A different lookback is a different cache key.
	_, err = svc.FetchAlignedSeries(context.Background(), []string{"bitcoin"}, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.chartCalls)
}

func TestCurrentPrice_CacheFirst(t *testing.T) {
	fetcher := &fakeFetcher{quotes: map[string]*coingecko.SpotQuote{
		"bitcoin": {CoinID: "bitcoin", Price: 42000, Change24h: 1.5},
	}}
	svc := New(fetcher, newCacheRepo(t), logger.New(logger.Config{Level: "error"}))

	first, err := svc.CurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	second, err := svc.CurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, 1, fetcher.quoteCalls)
}
