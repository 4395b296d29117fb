package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PortfolioSpec is one named portfolio tracked by the daily report.
type PortfolioSpec struct {
	Name         string    `yaml:"name"`
	Assets       []string  `yaml:"assets"`
	Weights      []float64 `yaml:"weights"`
	Frequency    string    `yaml:"frequency"`
	Days         int       `yaml:"days"`
	RiskFreeRate float64   `yaml:"risk_free_rate"`
}

type portfoliosFile struct {
	Portfolios []PortfolioSpec `yaml:"portfolios"`
}

// DefaultPortfolios returns the built-in portfolio tracked when no
// portfolios.yaml is configured: 40% BTC / 30% ETH / 30% SOL, rebalanced
// weekly over a one-year window.
func DefaultPortfolios() []PortfolioSpec {
	return []PortfolioSpec{
		{
			Name:         "core",
			Assets:       []string{"bitcoin", "ethereum", "solana"},
			Weights:      []float64{0.4, 0.3, 0.3},
			Frequency:    "weekly",
			Days:         365,
			RiskFreeRate: 0.02,
		},
	}
}

// LoadPortfolios reads portfolio definitions from a YAML file. An empty path
// returns the built-in defaults.
func LoadPortfolios(path string) ([]PortfolioSpec, error) {
	if path == "" {
		return DefaultPortfolios(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolios file: %w", err)
	}

	var parsed portfoliosFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse portfolios file: %w", err)
	}

	if len(parsed.Portfolios) == 0 {
		return nil, fmt.Errorf("portfolios file %s defines no portfolios", path)
	}

	for i := range parsed.Portfolios {
		p := &parsed.Portfolios[i]
		if p.Name == "" {
			return nil, fmt.Errorf("portfolio %d has no name", i)
		}
		if len(p.Assets) == 0 || len(p.Assets) != len(p.Weights) {
			return nil, fmt.Errorf("portfolio %q: assets and weights must be non-empty and equal length", p.Name)
		}
		if p.Days <= 0 {
			p.Days = 365
		}
		if p.Frequency == "" {
			p.Frequency = "weekly"
		}
	}

	return parsed.Portfolios, nil
}
