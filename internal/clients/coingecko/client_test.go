package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinfolio/pkg/logger"
)

func TestGetMarketChart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "365", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prices":[[1704067200000,42000.5],[1704153600000,43100.25]]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.New(logger.Config{Level: "error"}))
	points, err := client.GetMarketChart(context.Background(), "bitcoin", 365)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 42000.5, points[0].Price)
	assert.True(t, points[0].Time.Before(points[1].Time))
}

func TestGetMarketChart_ShortWindowOmitsInterval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"prices":[[1704067200000,42000.5]]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.New(logger.Config{Level: "error"}))
	_, err := client.GetMarketChart(context.Background(), "bitcoin", 30)
	require.NoError(t, err)
}

func TestGetMarketChart_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.New(logger.Config{Level: "error"}))
	_, err := client.GetMarketChart(context.Background(), "bitcoin", 30)
	require.Error(t, err)
}

func TestGetSimplePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))
		_, _ = w.Write([]byte(`{"ethereum":{"usd":2250.75,"usd_24h_change":-3.2}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.New(logger.Config{Level: "error"}))
	quote, err := client.GetSimplePrice(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, 2250.75, quote.Price)
	assert.Equal(t, -3.2, quote.Change24h)
}

func TestGetSimplePrice_UnknownCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger.New(logger.Config{Level: "error"}))
	_, err := client.GetSimplePrice(context.Background(), "doesnotexist")
	require.Error(t, err)
}
