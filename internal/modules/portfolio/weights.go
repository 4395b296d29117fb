package portfolio

// WeightSumTolerance is the permitted deviation of the weight sum from 1.0
// (±0.01 percentage points once weights are expressed as percent).
const WeightSumTolerance = 0.0001

// ValidateWeights verifies that every weight is within [0,1] and that the
// vector sums to 1.0 within WeightSumTolerance. On failure it returns an
// *InvalidWeightsError carrying the actual sum so the caller can offer a
// correction; the engine never normalizes on its own.
func ValidateWeights(weights []float64) error {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}

	if len(weights) == 0 {
		return &InvalidWeightsError{Sum: 0, Reason: "empty weight vector"}
	}

	for _, w := range weights {
		if w < 0 || w > 1 {
			return &InvalidWeightsError{Sum: sum, Reason: "weight outside [0,1]"}
		}
	}

	if sum < 1.0-WeightSumTolerance || sum > 1.0+WeightSumTolerance {
		return &InvalidWeightsError{Sum: sum, Reason: "weights do not sum to 1"}
	}

	return nil
}
