package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func points(prices map[int]float64) []PricePoint {
	out := make([]PricePoint, 0, len(prices))
	for d, p := range prices {
		out = append(out, PricePoint{Time: day(d), Price: p})
	}
	return out
}

func TestAlign_IntersectsDates(t *testing.T) {
	series := map[string][]PricePoint{
		"bitcoin":  points(map[int]float64{0: 100, 1: 101, 2: 102, 3: 103}),
		"ethereum": points(map[int]float64{1: 50, 2: 51, 3: 52, 4: 53}),
	}

	table, err := Align([]string{"bitcoin", "ethereum"}, series)
	require.NoError(t, err)

	// Only days 1..3 are present in both series.
	require.Equal(t, 3, table.NumDates())
	assert.Equal(t, day(1), table.Dates[0])
	assert.Equal(t, day(3), table.Dates[2])
	assert.Equal(t, []float64{101, 50}, table.Prices[0])
	assert.Equal(t, []float64{103, 52}, table.Prices[2])
}

func TestAlign_ChronologicalOrder(t *testing.T) {
	// Points supplied out of order must come back sorted.
	series := map[string][]PricePoint{
		"bitcoin": {
			{Time: day(5), Price: 105},
			{Time: day(1), Price: 101},
			{Time: day(3), Price: 103},
		},
	}

	table, err := Align([]string{"bitcoin"}, series)
	require.NoError(t, err)
	require.Equal(t, 3, table.NumDates())
	assert.True(t, table.Dates[0].Before(table.Dates[1]))
	assert.True(t, table.Dates[1].Before(table.Dates[2]))
}

func TestAlign_NoOverlap(t *testing.T) {
	series := map[string][]PricePoint{
		"bitcoin":  points(map[int]float64{0: 100, 1: 101}),
		"ethereum": points(map[int]float64{5: 50, 6: 51}),
	}

	_, err := Align([]string{"bitcoin", "ethereum"}, series)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestAlign_MissingSeries(t *testing.T) {
	series := map[string][]PricePoint{
		"bitcoin": points(map[int]float64{0: 100, 1: 101}),
	}

	_, err := Align([]string{"bitcoin", "ethereum"}, series)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = Align(nil, series)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestAlign_RejectsNonPositivePrice(t *testing.T) {
	series := map[string][]PricePoint{
		"bitcoin": points(map[int]float64{0: 100, 1: 0, 2: 102}),
	}

	_, err := Align([]string{"bitcoin"}, series)
	require.ErrorIs(t, err, ErrInvalidPrice)
}
