package clientdata

import "time"

// TTL constants per data type. These are added to time.Now() when storing to
// calculate expires_at. The cache is a courtesy towards the upstream API's
// rate limits, not a correctness requirement - the analytics core never
// reads it.
const (
	// TTLMarketChart covers historical daily series; they gain at most one
	// point per day, so a few minutes of staleness is invisible.
	TTLMarketChart = 5 * time.Minute

	// TTLCurrentPrice covers spot quotes shown next to analysis results.
	TTLCurrentPrice = time.Minute
)
