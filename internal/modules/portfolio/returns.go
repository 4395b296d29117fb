package portfolio

import (
	"fmt"

	"coinfolio/pkg/formulas"
)

// LogReturns derives per-asset daily logarithmic returns from an aligned
// price table. The output has one row per adjacent timestamp pair:
// returns[t][i] = ln(Prices[t+1][i] / Prices[t][i]).
//
// Log returns aggregate additively across time (sum of log returns = log of
// compounded growth), which both the statistics engine and the simulator's
// cumulative-value reconstruction rely on.
//
// Returns ErrInsufficientHistory when the table has fewer than 2 timestamps.
func LogReturns(table *AlignedPriceTable) ([][]float64, error) {
	if table.NumDates() < 2 {
		return nil, fmt.Errorf("need at least 2 aligned timestamps, got %d: %w",
			table.NumDates(), ErrInsufficientHistory)
	}

	n := table.NumAssets()
	out := make([][]float64, table.NumDates()-1)
	cols := make([][]float64, n)
	for i := 0; i < n; i++ {
		cols[i] = formulas.LogReturns(table.Column(i))
	}

	for t := range out {
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			row[i] = cols[i][t]
		}
		out[t] = row
	}

	return out, nil
}

// portfolioReturns collapses per-asset return rows into a single weighted
// portfolio return per timestamp pair.
func portfolioReturns(returns [][]float64, weights []float64) []float64 {
	out := make([]float64, len(returns))
	for t, row := range returns {
		sum := 0.0
		for i, r := range row {
			sum += weights[i] * r
		}
		out[t] = sum
	}
	return out
}

// returnColumn extracts one asset's return series from return rows.
func returnColumn(returns [][]float64, i int) []float64 {
	col := make([]float64, len(returns))
	for t, row := range returns {
		col[t] = row[i]
	}
	return col
}
