// Package portfolio implements the portfolio analytics core: price series
// alignment, log returns, risk/return metrics, and the rebalancing simulator.
// Everything in this package is a deterministic function over immutable
// inputs; no I/O, no shared state.
package portfolio

import "time"

// PricePoint is one observation of an asset price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// AlignedPriceTable holds prices for all assets restricted to their common
// timestamps, in chronological order. Prices is row-major: Prices[t][i] is
// the price of Assets[i] at Dates[t]. Every row has exactly one price per
// asset - alignment guarantees no gaps.
type AlignedPriceTable struct {
	Assets []string
	Dates  []time.Time
	Prices [][]float64
}

// NumAssets returns the number of assets in the table.
func (t *AlignedPriceTable) NumAssets() int {
	return len(t.Assets)
}

// NumDates returns the number of aligned timestamps.
func (t *AlignedPriceTable) NumDates() int {
	return len(t.Dates)
}

// Column returns the full price series for asset index i.
func (t *AlignedPriceTable) Column(i int) []float64 {
	col := make([]float64, len(t.Prices))
	for row := range t.Prices {
		col[row] = t.Prices[row][i]
	}
	return col
}

// RebalanceFrequency determines which timestamps are rebalancing boundaries.
type RebalanceFrequency string

const (
	// FrequencyNone never rebalances after the initial allocation (buy-and-hold).
	FrequencyNone RebalanceFrequency = "none"
	// FrequencyDaily rebalances at every timestamp.
	FrequencyDaily RebalanceFrequency = "daily"
	// FrequencyWeekly rebalances at the first timestamp of each new ISO week.
	FrequencyWeekly RebalanceFrequency = "weekly"
	// FrequencyMonthly rebalances at the first timestamp of each new calendar month.
	FrequencyMonthly RebalanceFrequency = "monthly"
)

// ParseFrequency converts a string to a RebalanceFrequency.
// An empty string defaults to FrequencyNone.
func ParseFrequency(s string) (RebalanceFrequency, bool) {
	switch RebalanceFrequency(s) {
	case "", FrequencyNone:
		return FrequencyNone, true
	case FrequencyDaily:
		return FrequencyDaily, true
	case FrequencyWeekly:
		return FrequencyWeekly, true
	case FrequencyMonthly:
		return FrequencyMonthly, true
	}
	return FrequencyNone, false
}

// IsBoundary reports whether cur is a rebalancing boundary given the previous
// timestamp in the series. The initial allocation at t0 is not a boundary.
func (f RebalanceFrequency) IsBoundary(prev, cur time.Time) bool {
	switch f {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		py, pw := prev.ISOWeek()
		cy, cw := cur.ISOWeek()
		return py != cy || pw != cw
	case FrequencyMonthly:
		return prev.Year() != cur.Year() || prev.Month() != cur.Month()
	}
	return false
}

// MetricsResult bundles the risk/return statistics for one
// (price table, weight vector, risk-free rate) triple.
type MetricsResult struct {
	AnnualReturnPct     float64     `json:"annual_return_pct"`
	AnnualVolatilityPct float64     `json:"annual_volatility_pct"`
	SharpeRatio         float64     `json:"sharpe_ratio"`
	Correlation         [][]float64 `json:"correlation"`
	MaxDrawdown         float64     `json:"max_drawdown"`
}

// SimulationResult is the output of one rebalancing simulation run.
// Values and Quantities share the table's timestamp index:
// Values[t] is the portfolio value at Dates[t] (1.0 at t0 by construction),
// Quantities[t][i] is the unit holding of Assets[i] at Dates[t].
type SimulationResult struct {
	Assets     []string    `json:"assets"`
	Dates      []time.Time `json:"dates"`
	Values     []float64   `json:"values"`
	Quantities [][]float64 `json:"quantities"`
}
