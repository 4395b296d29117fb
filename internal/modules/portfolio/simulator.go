package portfolio

import (
	"fmt"
	"time"
)

// Simulate advances a per-asset quantity state through the aligned table in
// chronological order, applying forced re-allocation at scheduled boundaries.
//
// Starting capital is normalized to 1.0 unit of account, so the first
// portfolio value is exactly 1.0 by construction. Between boundaries the
// quantities are carried over unchanged and only the portfolio value drifts
// with prices. At a boundary the pre-rebalance value is computed first with
// the carried-over quantities, then each quantity is reset to
// (value * weight_i) / price_i - selling winners and buying losers without
// changing the instantaneous portfolio value. Rebalancing is frictionless;
// no transaction costs are modeled.
func Simulate(table *AlignedPriceTable, weights []float64, frequency RebalanceFrequency) (*SimulationResult, error) {
	if len(weights) != table.NumAssets() {
		return nil, fmt.Errorf("%d weights for %d assets: %w",
			len(weights), table.NumAssets(), ErrDimensionMismatch)
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if table.NumDates() < 1 {
		return nil, fmt.Errorf("empty price table: %w", ErrInsufficientHistory)
	}

	n := table.NumAssets()
	m := table.NumDates()

	// A non-positive price makes the quantity division undefined. The aligner
	// already rejects these, but the table may have been built by hand.
	for t := 0; t < m; t++ {
		for i := 0; i < n; i++ {
			if table.Prices[t][i] <= 0 {
				return nil, fmt.Errorf("%s at %s: %w",
					table.Assets[i], table.Dates[t].Format("2006-01-02"), ErrInvalidPrice)
			}
		}
	}

	result := &SimulationResult{
		Assets:     append([]string(nil), table.Assets...),
		Dates:      append([]time.Time(nil), table.Dates...),
		Values:     make([]float64, m),
		Quantities: make([][]float64, m),
	}

	// Initial allocation at t0.
	qty := make([]float64, n)
	for i := 0; i < n; i++ {
		qty[i] = weights[i] / table.Prices[0][i]
	}
	result.Values[0] = 1.0
	result.Quantities[0] = append([]float64(nil), qty...)

	for t := 1; t < m; t++ {
		// Drift: carried-over quantities at the new prices.
		value := 0.0
		for i := 0; i < n; i++ {
			value += qty[i] * table.Prices[t][i]
		}

		if frequency.IsBoundary(table.Dates[t-1], table.Dates[t]) {
			for i := 0; i < n; i++ {
				qty[i] = value * weights[i] / table.Prices[t][i]
			}
		}

		result.Values[t] = value
		result.Quantities[t] = append([]float64(nil), qty...)
	}

	return result, nil
}
