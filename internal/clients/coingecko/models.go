package coingecko

// marketChartResponse mirrors the /coins/{id}/market_chart payload.
// Each inner slice is a [unix_millis, value] pair.
type marketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// SpotQuote is the current price of one coin with its 24h change.
type SpotQuote struct {
	CoinID    string  `json:"coin_id"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}
