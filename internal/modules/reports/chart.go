package reports

import (
	"fmt"
	"strings"

	charts "github.com/vicanso/go-charts/v2"

	"coinfolio/internal/modules/portfolio"
)

// RenderValueChart renders the simulated portfolio value curve as a PNG.
// The title carries the headline metrics so the image is self-contained.
func RenderValueChart(sim *portfolio.SimulationResult, metrics *portfolio.MetricsResult, name string) ([]byte, error) {
	if sim == nil || len(sim.Values) == 0 {
		return nil, fmt.Errorf("simulation result has no values")
	}

	xLabels := make([]string, len(sim.Dates))
	for i, d := range sim.Dates {
		xLabels[i] = d.Format("Jan 02")
	}

	minVal, maxVal := sim.Values[0], sim.Values[0]
	for _, v := range sim.Values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	title := fmt.Sprintf("%s (%s)", name, strings.Join(sim.Assets, ", "))
	subtitle := fmt.Sprintf("Return: %.2f%% | Vol: %.2f%% | Sharpe: %.2f | MaxDD: %.2f%%",
		metrics.AnnualReturnPct, metrics.AnnualVolatilityPct, metrics.SharpeRatio, metrics.MaxDrawdown*100)

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{sim.Values},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return buf, nil
}
