package portfolio

import (
	"fmt"
	"sort"
	"time"
)

// Align intersects per-asset price series onto a common, gap-free timestamp
// index, in chronological order and in the caller's asset order.
//
// This is intersection, not union-with-fill: a timestamp missing from any one
// asset's series is dropped from all of them. Forward-filling would silently
// fabricate price history for a missing-data period.
//
// Returns ErrInsufficientData when no assets are given, an asset has no
// series, or the intersection is empty. Returns ErrInvalidPrice when any
// retained price is not strictly positive.
func Align(assets []string, series map[string][]PricePoint) (*AlignedPriceTable, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("no assets given: %w", ErrInsufficientData)
	}

	// Per-asset timestamp -> price lookup, keyed by Unix seconds.
	byAsset := make([]map[int64]float64, len(assets))
	for i, asset := range assets {
		points := series[asset]
		if len(points) == 0 {
			return nil, fmt.Errorf("no price series for %s: %w", asset, ErrInsufficientData)
		}

		lookup := make(map[int64]float64, len(points))
		for _, p := range points {
			lookup[p.Time.Unix()] = p.Price
		}
		byAsset[i] = lookup
	}

	// Intersect timestamps, starting from the first asset's series.
	var common []int64
	for ts := range byAsset[0] {
		present := true
		for _, lookup := range byAsset[1:] {
			if _, ok := lookup[ts]; !ok {
				present = false
				break
			}
		}
		if present {
			common = append(common, ts)
		}
	}

	if len(common) == 0 {
		return nil, fmt.Errorf("no overlapping dates across %d assets: %w", len(assets), ErrInsufficientData)
	}

	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	table := &AlignedPriceTable{
		Assets: append([]string(nil), assets...),
		Dates:  make([]time.Time, len(common)),
		Prices: make([][]float64, len(common)),
	}

	for row, ts := range common {
		table.Dates[row] = time.Unix(ts, 0).UTC()
		prices := make([]float64, len(assets))
		for i := range assets {
			price := byAsset[i][ts]
			if price <= 0 {
				return nil, fmt.Errorf("%s at %s: %w", assets[i], table.Dates[row].Format("2006-01-02"), ErrInvalidPrice)
			}
			prices[i] = price
		}
		table.Prices[row] = prices
	}

	return table, nil
}
