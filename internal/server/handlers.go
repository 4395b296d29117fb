package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coinfolio/internal/modules/portfolio"
	"coinfolio/internal/modules/reports"
	"coinfolio/internal/modules/strategies"
)

const defaultLookbackDays = 365

// portfolioRequest is the shared request body for metrics and simulation.
type portfolioRequest struct {
	Assets       []string  `json:"assets"`
	Weights      []float64 `json:"weights"`
	Days         int       `json:"days"`
	Frequency    string    `json:"frequency"`
	RiskFreeRate float64   `json:"risk_free_rate"`
}

func (p *portfolioRequest) normalize() error {
	if len(p.Assets) == 0 {
		return fmt.Errorf("assets list is empty")
	}
	if p.Days <= 0 {
		p.Days = defaultLookbackDays
	}
	return nil
}

type metricsResponse struct {
	RunID               string      `json:"run_id"`
	Assets              []string    `json:"assets"`
	Days                int         `json:"days"`
	AlignedDates        int         `json:"aligned_dates"`
	AnnualReturnPct     float64     `json:"annual_return_pct"`
	AnnualVolatilityPct float64     `json:"annual_volatility_pct"`
	SharpeRatio         float64     `json:"sharpe_ratio"`
	MaxDrawdown         float64     `json:"max_drawdown"`
	Correlation         [][]float64 `json:"correlation"`
}

type simulateResponse struct {
	RunID      string      `json:"run_id"`
	Assets     []string    `json:"assets"`
	Frequency  string      `json:"frequency"`
	Dates      []time.Time `json:"dates"`
	Values     []float64   `json:"values"`
	Quantities [][]float64 `json:"quantities"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "coinfolio",
	})
}

// handlePortfolioMetrics computes risk metrics for an ad-hoc portfolio.
// POST /api/portfolio/metrics
func (s *Server) handlePortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.normalize(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := s.market.FetchAlignedSeries(r.Context(), req.Assets, req.Days)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	metrics, err := portfolio.ComputeMetrics(table, req.Weights, req.RiskFreeRate)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, metricsResponse{
		RunID:               uuid.New().String(),
		Assets:              table.Assets,
		Days:                req.Days,
		AlignedDates:        table.NumDates(),
		AnnualReturnPct:     metrics.AnnualReturnPct,
		AnnualVolatilityPct: metrics.AnnualVolatilityPct,
		SharpeRatio:         metrics.SharpeRatio,
		MaxDrawdown:         metrics.MaxDrawdown,
		Correlation:         metrics.Correlation,
	})
}

// handlePortfolioSimulate runs the rebalancing simulation.
// POST /api/portfolio/simulate
func (s *Server) handlePortfolioSimulate(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.normalize(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	freq, ok := portfolio.ParseFrequency(req.Frequency)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown rebalance frequency %q", req.Frequency))
		return
	}

	table, err := s.market.FetchAlignedSeries(r.Context(), req.Assets, req.Days)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	sim, err := portfolio.Simulate(table, req.Weights, freq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, simulateResponse{
		RunID:      uuid.New().String(),
		Assets:     sim.Assets,
		Frequency:  string(freq),
		Dates:      sim.Dates,
		Values:     sim.Values,
		Quantities: sim.Quantities,
	})
}

// handlePortfolioChart renders the simulated value curve as a PNG.
// GET /api/portfolio/chart?assets=bitcoin,ethereum&weights=0.6,0.4&days=365&frequency=weekly
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	assets := splitList(r.URL.Query().Get("assets"))
	if len(assets) == 0 {
		s.writeError(w, http.StatusBadRequest, "assets query parameter is required")
		return
	}

	weights, err := parseFloats(r.URL.Query().Get("weights"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "weights must be comma-separated numbers")
		return
	}

	days := queryInt(r, "days", defaultLookbackDays)
	freq, ok := portfolio.ParseFrequency(r.URL.Query().Get("frequency"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown rebalance frequency")
		return
	}

	table, err := s.market.FetchAlignedSeries(r.Context(), assets, days)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	metrics, err := portfolio.ComputeMetrics(table, weights, 0)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	sim, err := portfolio.Simulate(table, weights, freq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Portfolio"
	}

	png, err := reports.RenderValueChart(sim, metrics, name)
	if err != nil {
		s.log.Error().Err(err).Msg("Chart render failed")
		s.writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

// handleAssetPrice returns the current spot quote for one asset.
// GET /api/assets/{id}/price
func (s *Server) handleAssetPrice(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	quote, err := s.market.CurrentPrice(r.Context(), assetID)
	if err != nil {
		s.log.Warn().Err(err).Str("asset", assetID).Msg("Spot quote failed")
		s.writeError(w, http.StatusBadGateway, "failed to fetch current price")
		return
	}

	s.writeJSON(w, http.StatusOK, quote)
}

// handleAssetStrategy backtests one technical strategy on one asset.
// GET /api/assets/{id}/strategy?strategy=sma&short=10&long=30&days=365
func (s *Server) handleAssetStrategy(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	days := queryInt(r, "days", defaultLookbackDays)

	table, err := s.market.FetchAlignedSeries(r.Context(), []string{assetID}, days)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	points := make([]portfolio.PricePoint, table.NumDates())
	for t := range points {
		points[t] = portfolio.PricePoint{Time: table.Dates[t], Price: table.Prices[t][0]}
	}

	var result *strategies.BacktestResult
	switch strategy := r.URL.Query().Get("strategy"); strategy {
	case "", "sma":
		result, err = strategies.SMACrossover(points,
			queryInt(r, "short", strategies.DefaultSMAShort),
			queryInt(r, "long", strategies.DefaultSMALong))
	case "rsi":
		result, err = strategies.RSIStrategy(points, queryInt(r, "period", strategies.DefaultRSIPeriod))
	case "hold":
		result, err = strategies.BuyAndHold(points)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", strategy))
		return
	}

	if err != nil {
		if errors.Is(err, strategies.ErrNotEnoughHistory) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			s.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleGenerateReport triggers the daily report immediately.
// POST /api/reports/generate
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report service not configured")
		return
	}

	report, err := s.reports.Generate(r.Context(), s.portfolios)
	if err != nil {
		s.log.Error().Err(err).Msg("Manual report generation failed")
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// writeDomainError maps analytics errors onto HTTP statuses: caller mistakes
// get 400, valid requests the data cannot satisfy get 422, upstream trouble
// gets 502.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var weightsErr *portfolio.InvalidWeightsError

	switch {
	case errors.As(err, &weightsErr):
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":      weightsErr.Error(),
			"weight_sum": weightsErr.Sum,
		})
	case errors.Is(err, portfolio.ErrInvalidWeights),
		errors.Is(err, portfolio.ErrDimensionMismatch):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, portfolio.ErrInsufficientData),
		errors.Is(err, portfolio.ErrInsufficientHistory),
		errors.Is(err, portfolio.ErrInvalidPrice):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Warn().Err(err).Msg("Market data request failed")
		s.writeError(w, http.StatusBadGateway, "failed to fetch market data")
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloats(raw string) ([]float64, error) {
	parts := splitList(raw)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
