// Package marketdata supplies aligned historical price tables and spot
// quotes to the analytics layer, with cache-first reads against the client
// data store. The analytics core stays callable with directly supplied
// in-memory tables; this package only feeds it.
package marketdata

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"coinfolio/internal/clientdata"
	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/modules/portfolio"
)

// Fetcher is the upstream price source (CoinGecko in production).
type Fetcher interface {
	GetMarketChart(ctx context.Context, coinID string, days int) ([]portfolio.PricePoint, error)
	GetSimplePrice(ctx context.Context, coinID string) (*coingecko.SpotQuote, error)
}

// Service provides cached, aligned market data.
type Service struct {
	fetcher Fetcher
	cache   *clientdata.Repository // optional; nil disables caching
	log     zerolog.Logger
}

// New creates a market data service. cache may be nil, in which case every
// call goes to the upstream API.
func New(fetcher Fetcher, cache *clientdata.Repository, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		log:     log.With().Str("component", "marketdata").Logger(),
	}
}

// FetchAlignedSeries fetches the historical series for every asset over the
// lookback window and intersects them onto a common date index. Repeated
// calls within the cache TTL are served from the client data store.
func (s *Service) FetchAlignedSeries(ctx context.Context, assetIDs []string, days int) (*portfolio.AlignedPriceTable, error) {
	series := make(map[string][]portfolio.PricePoint, len(assetIDs))
	for _, id := range assetIDs {
		points, err := s.historicalSeries(ctx, id, days)
		if err != nil {
			return nil, fmt.Errorf("failed to load series for %s: %w", id, err)
		}
		series[id] = points
	}

	table, err := portfolio.Align(assetIDs, series)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("assets", len(assetIDs)).
		Int("aligned_dates", table.NumDates()).
		Msg("Built aligned price table")

	return table, nil
}

// CurrentPrice returns the spot quote for one asset, cache-first.
func (s *Service) CurrentPrice(ctx context.Context, assetID string) (*coingecko.SpotQuote, error) {
	if s.cache != nil {
		var quote coingecko.SpotQuote
		hit, err := s.cache.GetIfFresh("current_prices", assetID, &quote)
		if err != nil {
			s.log.Warn().Err(err).Str("asset", assetID).Msg("Spot price cache read failed")
		} else if hit {
			return &quote, nil
		}
	}

	quote, err := s.fetcher.GetSimplePrice(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store("current_prices", assetID, quote, clientdata.TTLCurrentPrice); err != nil {
			s.log.Warn().Err(err).Str("asset", assetID).Msg("Failed to cache spot price")
		}
	}

	return quote, nil
}

func (s *Service) historicalSeries(ctx context.Context, assetID string, days int) ([]portfolio.PricePoint, error) {
	key := fmt.Sprintf("%s:%d", assetID, days)

	if s.cache != nil {
		var points []portfolio.PricePoint
		hit, err := s.cache.GetIfFresh("market_chart", key, &points)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Market chart cache read failed")
		} else if hit {
			s.log.Debug().Str("key", key).Msg("Market chart served from cache")
			return points, nil
		}
	}

	points, err := s.fetcher.GetMarketChart(ctx, assetID, days)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store("market_chart", key, points, clientdata.TTLMarketChart); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache market chart")
		}
	}

	return points, nil
}
