// Package reports generates the daily portfolio report: a plain-text summary
// of per-asset prices and indicator signals, portfolio risk metrics, and
// rebalancing quantity drift, plus a PNG chart of the simulated value curve.
package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/config"
	"coinfolio/internal/modules/portfolio"
	"coinfolio/internal/modules/strategies"
)

// MarketData is the slice of the market data service the report needs.
type MarketData interface {
	FetchAlignedSeries(ctx context.Context, assetIDs []string, days int) (*portfolio.AlignedPriceTable, error)
	CurrentPrice(ctx context.Context, assetID string) (*coingecko.SpotQuote, error)
}

// Report describes one generated report on disk.
type Report struct {
	TextPath    string    `json:"text_path"`
	ChartPaths  []string  `json:"chart_paths"`
	GeneratedAt time.Time `json:"generated_at"`
	Uploaded    []string  `json:"uploaded,omitempty"`
}

// Service generates daily reports.
type Service struct {
	data      MarketData
	uploader  *Uploader // optional; nil disables S3 upload
	reportDir string
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates a report service. uploader may be nil.
func NewService(data MarketData, uploader *Uploader, reportDir string, log zerolog.Logger) *Service {
	return &Service{
		data:      data,
		uploader:  uploader,
		reportDir: reportDir,
		log:       log.With().Str("component", "reports").Logger(),
		now:       time.Now,
	}
}

// Generate builds the daily report for the given portfolios, writes the text
// report and one chart per portfolio to the report directory, and uploads
// them when an uploader is configured.
func (s *Service) Generate(ctx context.Context, specs []config.PortfolioSpec) (*Report, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no portfolios to report on")
	}

	now := s.now()
	stamp := now.Format("2006-01-02")

	var sb strings.Builder
	sb.WriteString("====================================================\n")
	fmt.Fprintf(&sb, "DAILY PORTFOLIO REPORT - %s\n", now.Format("2006-01-02 15:04"))
	sb.WriteString("====================================================\n\n")

	sb.WriteString("SECTION 1: INDIVIDUAL ASSET ANALYSIS\n")
	sb.WriteString("----------------------------------------------------\n")
	for _, asset := range uniqueAssets(specs) {
		if err := s.writeAssetSection(ctx, &sb, asset); err != nil {
			return nil, err
		}
	}

	sb.WriteString("SECTION 2: PORTFOLIO PERFORMANCE\n")
	sb.WriteString("----------------------------------------------------\n")

	report := &Report{GeneratedAt: now}
	for _, spec := range specs {
		chartPath, err := s.writePortfolioSection(ctx, &sb, spec, stamp)
		if err != nil {
			return nil, err
		}
		report.ChartPaths = append(report.ChartPaths, chartPath)
	}

	sb.WriteString("[End of Report]\n")

	textPath := filepath.Join(s.reportDir, fmt.Sprintf("daily_report_%s.txt", stamp))
	if err := os.WriteFile(textPath, []byte(sb.String()), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	report.TextPath = textPath

	s.log.Info().
		Str("path", textPath).
		Int("portfolios", len(specs)).
		Msg("Daily report generated")

	if s.uploader != nil {
		for _, path := range append([]string{textPath}, report.ChartPaths...) {
			key, err := s.uploader.UploadFile(ctx, path)
			if err != nil {
				s.log.Error().Err(err).Str("path", path).Msg("Report upload failed")
				continue
			}
			report.Uploaded = append(report.Uploaded, key)
		}
	}

	return report, nil
}

func (s *Service) writeAssetSection(ctx context.Context, sb *strings.Builder, asset string) error {
	quote, err := s.data.CurrentPrice(ctx, asset)
	if err != nil {
		return fmt.Errorf("failed to quote %s: %w", asset, err)
	}

	fmt.Fprintf(sb, "Asset: %s\n", strings.ToUpper(asset))
	fmt.Fprintf(sb, " - Price: $%.2f (%+.2f%%)\n", quote.Price, quote.Change24h)

	// SMA signal over the last year of closes. A short series downgrades
	// the line rather than failing the whole report.
	table, err := s.data.FetchAlignedSeries(ctx, []string{asset}, 365)
	if err != nil {
		return fmt.Errorf("failed to load history for %s: %w", asset, err)
	}
	points := pointsOf(table)

	backtest, err := strategies.SMACrossover(points, 20, 50)
	if err != nil {
		fmt.Fprintf(sb, " - SMA Signal: N/A (%v)\n\n", err)
		return nil
	}
	fmt.Fprintf(sb, " - SMA Signal (20/50): %s\n\n", backtest.Signal)
	return nil
}

func (s *Service) writePortfolioSection(ctx context.Context, sb *strings.Builder, spec config.PortfolioSpec, stamp string) (string, error) {
	table, err := s.data.FetchAlignedSeries(ctx, spec.Assets, spec.Days)
	if err != nil {
		return "", fmt.Errorf("portfolio %q: %w", spec.Name, err)
	}

	metrics, err := portfolio.ComputeMetrics(table, spec.Weights, spec.RiskFreeRate)
	if err != nil {
		return "", fmt.Errorf("portfolio %q metrics: %w", spec.Name, err)
	}

	freq, ok := portfolio.ParseFrequency(spec.Frequency)
	if !ok {
		return "", fmt.Errorf("portfolio %q: unknown rebalance frequency %q", spec.Name, spec.Frequency)
	}
	sim, err := portfolio.Simulate(table, spec.Weights, freq)
	if err != nil {
		return "", fmt.Errorf("portfolio %q simulation: %w", spec.Name, err)
	}

	fmt.Fprintf(sb, "Portfolio: %s (rebalanced %s)\n", spec.Name, freq)
	fmt.Fprintf(sb, " - Annualized Return: %.2f%%\n", metrics.AnnualReturnPct)
	fmt.Fprintf(sb, " - Portfolio Volatility: %.2f%%\n", metrics.AnnualVolatilityPct)
	fmt.Fprintf(sb, " - Sharpe Ratio: %.2f\n", metrics.SharpeRatio)
	fmt.Fprintf(sb, " - Max Drawdown: %.2f%%\n\n", metrics.MaxDrawdown*100)

	sb.WriteString("QUANTITY DRIFT SINCE START:\n")
	first := sim.Quantities[0]
	last := sim.Quantities[len(sim.Quantities)-1]
	for i, asset := range spec.Assets {
		change := (last[i] - first[i]) / first[i] * 100
		fmt.Fprintf(sb, " - %s: %.4f units (%+.2f%% total drift)\n", strings.ToUpper(asset), last[i], change)
	}
	sb.WriteString("\n")

	png, err := RenderValueChart(sim, metrics, spec.Name)
	if err != nil {
		return "", fmt.Errorf("portfolio %q chart: %w", spec.Name, err)
	}
	chartPath := filepath.Join(s.reportDir, fmt.Sprintf("chart_%s_%s.png", spec.Name, stamp))
	if err := os.WriteFile(chartPath, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}

	return chartPath, nil
}

func uniqueAssets(specs []config.PortfolioSpec) []string {
	seen := make(map[string]bool)
	var out []string
	for _, spec := range specs {
		for _, asset := range spec.Assets {
			if !seen[asset] {
				seen[asset] = true
				out = append(out, asset)
			}
		}
	}
	return out
}

func pointsOf(table *portfolio.AlignedPriceTable) []portfolio.PricePoint {
	points := make([]portfolio.PricePoint, table.NumDates())
	for t := range points {
		points[t] = portfolio.PricePoint{Time: table.Dates[t], Price: table.Prices[t][0]}
	}
	return points
}
