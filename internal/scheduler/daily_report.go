package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"coinfolio/internal/config"
	"coinfolio/internal/modules/reports"
)

// DailyReportJob generates the daily portfolio report for every configured
// portfolio.
type DailyReportJob struct {
	service    *reports.Service
	portfolios []config.PortfolioSpec
	timeout    time.Duration
	log        zerolog.Logger
}

// NewDailyReportJob creates a new daily report job
func NewDailyReportJob(service *reports.Service, portfolios []config.PortfolioSpec, log zerolog.Logger) *DailyReportJob {
	return &DailyReportJob{
		service:    service,
		portfolios: portfolios,
		timeout:    5 * time.Minute,
		log:        log.With().Str("job", "daily_report").Logger(),
	}
}

// Name returns the job name
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Run generates the report
func (j *DailyReportJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.service.Generate(ctx, j.portfolios)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("path", report.TextPath).
		Int("charts", len(report.ChartPaths)).
		Int("uploaded", len(report.Uploaded)).
		Msg("Daily report job finished")

	return nil
}
