package portfolio

import (
	"errors"
	"fmt"
)

// Error values returned by the analytics core. Callers match them with
// errors.Is and map them to transport-level responses; the core never
// papers over bad input with zeros.
var (
	// ErrInsufficientData means fewer price points than required, or no date
	// overlap across the requested assets.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInsufficientHistory means fewer than 2 aligned timestamps, too few
	// to compute a single return.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrDimensionMismatch means the weight count does not match the asset count.
	ErrDimensionMismatch = errors.New("weight count does not match asset count")

	// ErrInvalidPrice means a non-positive price was encountered. Quantities
	// are derived by dividing by price, so this is fatal.
	ErrInvalidPrice = errors.New("non-positive price")

	// ErrInvalidWeights is the sentinel for weight validation failures.
	// The concrete error is an *InvalidWeightsError carrying the actual sum.
	ErrInvalidWeights = errors.New("invalid weights")
)

// InvalidWeightsError reports a weight vector that is out of range or does
// not sum to 1. Sum carries the actual total so a caller can present a
// corrective action (e.g. reset to equal weights) - the engine itself never
// auto-normalizes.
type InvalidWeightsError struct {
	Sum    float64
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	return fmt.Sprintf("invalid weights: %s (sum=%.4f)", e.Reason, e.Sum)
}

// Unwrap lets errors.Is(err, ErrInvalidWeights) match.
func (e *InvalidWeightsError) Unwrap() error {
	return ErrInvalidWeights
}
