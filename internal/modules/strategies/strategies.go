// Package strategies implements single-asset technical indicator backtests:
// buy-and-hold, SMA crossover, and an RSI threshold strategy. Signals are
// shifted one day so a position is always taken on the previous day's
// indicator, never the current one (no look-ahead).
package strategies

import (
	"errors"
	"fmt"
	"time"

	talib "github.com/markcheno/go-talib"

	"coinfolio/internal/modules/portfolio"
)

// Signal is the latest indicator verdict for an asset.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// ErrNotEnoughHistory means the series is shorter than the indicator lookback.
var ErrNotEnoughHistory = errors.New("not enough history for indicator window")

// Default indicator windows, matching common charting conventions.
const (
	DefaultSMAShort  = 10
	DefaultSMALong   = 30
	DefaultRSIPeriod = 14
	RSIOversold      = 30.0
	RSIOverbought    = 70.0
)

// BacktestResult is the outcome of running one strategy over one series.
// Cumulative is normalized to 1.0 at the first timestamp.
type BacktestResult struct {
	Strategy   string      `json:"strategy"`
	Dates      []time.Time `json:"dates"`
	Cumulative []float64   `json:"cumulative"`
	Signal     Signal      `json:"signal"`
}

// BuyAndHold computes the cumulative value of holding the asset untouched.
func BuyAndHold(points []portfolio.PricePoint) (*BacktestResult, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 points: %w", ErrNotEnoughHistory)
	}

	result := newResult("buy_and_hold", points)
	for t := 1; t < len(points); t++ {
		result.Cumulative[t] = points[t].Price / points[0].Price
	}
	result.Signal = SignalHold
	return result, nil
}

// SMACrossover backtests a simple moving average crossover: long while the
// short SMA is above the long SMA, flat otherwise.
func SMACrossover(points []portfolio.PricePoint, shortWindow, longWindow int) (*BacktestResult, error) {
	if shortWindow <= 0 {
		shortWindow = DefaultSMAShort
	}
	if longWindow <= 0 {
		longWindow = DefaultSMALong
	}
	if shortWindow >= longWindow {
		return nil, fmt.Errorf("short window %d must be below long window %d", shortWindow, longWindow)
	}
	if len(points) <= longWindow {
		return nil, fmt.Errorf("need more than %d points, got %d: %w", longWindow, len(points), ErrNotEnoughHistory)
	}

	closes := closesOf(points)
	smaShort := talib.Sma(closes, shortWindow)
	smaLong := talib.Sma(closes, longWindow)

	// The first longWindow-1 SMA values are warm-up; no position there.
	inPosition := func(t int) bool {
		return t >= longWindow-1 && smaShort[t] > smaLong[t]
	}

	result := newResult("sma_crossover", points)
	position := false
	for t := 1; t < len(points); t++ {
		ret := closes[t]/closes[t-1] - 1
		growth := 1.0
		if position {
			growth = 1 + ret
		}
		result.Cumulative[t] = result.Cumulative[t-1] * growth
		position = inPosition(t)
	}

	last := len(points) - 1
	if inPosition(last) {
		result.Signal = SignalBuy
	} else {
		result.Signal = SignalSell
	}
	return result, nil
}

// RSIStrategy backtests an RSI threshold strategy: enter when RSI drops
// below the oversold level, exit when it rises above the overbought level,
// hold otherwise.
func RSIStrategy(points []portfolio.PricePoint, period int) (*BacktestResult, error) {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(points) <= period+1 {
		return nil, fmt.Errorf("need more than %d points, got %d: %w", period+1, len(points), ErrNotEnoughHistory)
	}

	closes := closesOf(points)
	rsi := talib.Rsi(closes, period)

	result := newResult("rsi", points)
	position := false
	for t := 1; t < len(points); t++ {
		ret := closes[t]/closes[t-1] - 1
		growth := 1.0
		if position {
			growth = 1 + ret
		}
		result.Cumulative[t] = result.Cumulative[t-1] * growth

		// RSI warm-up values are zero-filled; only act past the lookback.
		if t >= period {
			if rsi[t] < RSIOversold {
				position = true
			} else if rsi[t] > RSIOverbought {
				position = false
			}
		}
	}

	last := len(points) - 1
	switch {
	case rsi[last] < RSIOversold:
		result.Signal = SignalBuy
	case rsi[last] > RSIOverbought:
		result.Signal = SignalSell
	default:
		result.Signal = SignalHold
	}
	return result, nil
}

func newResult(name string, points []portfolio.PricePoint) *BacktestResult {
	dates := make([]time.Time, len(points))
	cumulative := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Time
	}
	cumulative[0] = 1.0
	return &BacktestResult{Strategy: name, Dates: dates, Cumulative: cumulative}
}

func closesOf(points []portfolio.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Price
	}
	return closes
}
