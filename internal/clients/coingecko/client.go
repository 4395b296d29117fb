// Package coingecko is a minimal CoinGecko API client covering historical
// market charts and spot prices.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"coinfolio/internal/modules/portfolio"
)

// DefaultBaseURL is the public CoinGecko v3 API endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// The free tier blocks default Go user agents; a browser UA keeps requests
// from being rejected.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client is a CoinGecko API client
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new CoinGecko client. An empty baseURL selects the
// public API.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

// GetMarketChart fetches the historical daily price series for one coin over
// the given lookback in days. Beyond 90 days the daily interval is requested
// explicitly to keep the response small; below that CoinGecko picks the
// granularity itself (hourly intervals are paid-tier only).
func (c *Client) GetMarketChart(ctx context.Context, coinID string, days int) ([]portfolio.PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))
	if days > 90 {
		params.Set("interval", "daily")
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(coinID), params.Encode())

	var resp marketChartResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch market chart for %s: %w", coinID, err)
	}

	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("no price data returned for %s", coinID)
	}

	points := make([]portfolio.PricePoint, 0, len(resp.Prices))
	for _, pair := range resp.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, portfolio.PricePoint{
			Time:  time.UnixMilli(int64(pair[0])).UTC(),
			Price: pair[1],
		})
	}

	c.log.Debug().
		Str("coin_id", coinID).
		Int("days", days).
		Int("points", len(points)).
		Msg("Fetched market chart")

	return points, nil
}

// GetSimplePrice fetches the current USD price and 24h change for one coin.
func (c *Client) GetSimplePrice(ctx context.Context, coinID string) (*SpotQuote, error) {
	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode())

	var resp map[string]map[string]float64
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch spot price for %s: %w", coinID, err)
	}

	coin, ok := resp[coinID]
	if !ok {
		return nil, fmt.Errorf("no spot price returned for %s", coinID)
	}

	return &SpotQuote{
		CoinID:    coinID,
		Price:     coin["usd"],
		Change24h: coin["usd_24h_change"],
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Msg("CoinGecko returned non-200 status")
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
