package portfolio

import (
	"fmt"
	"math"

	"coinfolio/pkg/formulas"
)

// ComputeMetrics derives annualized return, covariance-based annualized
// volatility, Sharpe ratio, correlation matrix and max drawdown from an
// aligned price table and a target weight vector.
//
// riskFreeRateAnnual is expressed as a decimal (0.02 = 2%). The result is a
// pure function of its inputs: identical inputs yield identical output.
func ComputeMetrics(table *AlignedPriceTable, weights []float64, riskFreeRateAnnual float64) (*MetricsResult, error) {
	if len(weights) != table.NumAssets() {
		return nil, fmt.Errorf("%d weights for %d assets: %w",
			len(weights), table.NumAssets(), ErrDimensionMismatch)
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	returns, err := LogReturns(table)
	if err != nil {
		return nil, err
	}

	n := table.NumAssets()
	cols := make([][]float64, n)
	for i := 0; i < n; i++ {
		cols[i] = returnColumn(returns, i)
	}

	// Portfolio annualized return: weighted sum of annualized per-asset mean
	// log returns. Linear combination is valid here because log returns are
	// being averaged, not compounded.
	annualReturn := 0.0
	for i := 0; i < n; i++ {
		annualReturn += weights[i] * formulas.Mean(cols[i]) * formulas.AnnualizationFactor
	}

	// Annualized covariance matrix and the quadratic form w' Σ w.
	cov := covarianceMatrix(cols)
	variance := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += weights[i] * cov[i][j] * formulas.AnnualizationFactor * weights[j]
		}
	}
	// Σ is PSD so the quadratic form is non-negative; clamp the float noise.
	if variance < 0 {
		variance = 0
	}
	annualVolatility := math.Sqrt(variance)

	// Degenerate case: zero volatility yields Sharpe 0, never a division.
	sharpe := 0.0
	if annualVolatility > 0 {
		sharpe = (annualReturn - riskFreeRateAnnual) / annualVolatility
	}

	corr := correlationMatrix(cols)

	// Max drawdown on the cumulative value the simulator would produce:
	// exp(cumulative sum of portfolio log returns), normalized to 1.0.
	pr := portfolioReturns(returns, weights)
	cumulative := make([]float64, len(pr)+1)
	cumulative[0] = 1.0
	sum := 0.0
	for t, r := range pr {
		sum += r
		cumulative[t+1] = math.Exp(sum)
	}

	return &MetricsResult{
		AnnualReturnPct:     annualReturn * 100,
		AnnualVolatilityPct: annualVolatility * 100,
		SharpeRatio:         sharpe,
		Correlation:         corr,
		MaxDrawdown:         formulas.MaxDrawdown(cumulative),
	}, nil
}

// covarianceMatrix builds the sample covariance matrix of daily return
// columns. Symmetric by construction.
func covarianceMatrix(cols [][]float64) [][]float64 {
	n := len(cols)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := formulas.Covariance(cols[i], cols[j])
			cov[i][j] = c
			if i != j {
				cov[j][i] = c
			}
		}
	}
	return cov
}

// correlationMatrix builds the Pearson correlation matrix of daily return
// columns. The diagonal is pinned to exactly 1.0; pairs involving a
// zero-variance column are reported as 0.
func correlationMatrix(cols [][]float64) [][]float64 {
	n := len(cols)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := formulas.Correlation(cols[i], cols[j])
			corr[i][j] = r
			corr[j][i] = r
		}
	}
	return corr
}
