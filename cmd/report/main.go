// Command report generates the daily portfolio report once and exits.
// Intended for cron or manual runs without starting the HTTP server.
package main

import (
	"context"
	"path/filepath"
	"time"

	"coinfolio/internal/clientdata"
	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/config"
	"coinfolio/internal/database"
	"coinfolio/internal/marketdata"
	"coinfolio/internal/modules/reports"
	"coinfolio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	portfolios, err := config.LoadPortfolios(cfg.PortfoliosFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load portfolios")
	}

	db, err := database.Open(filepath.Join(cfg.DataDir, "client_data.db"), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data database")
	}
	defer db.Close()

	cache := clientdata.NewRepository(db)
	if err := cache.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	gecko := coingecko.NewClient(cfg.CoinGeckoBaseURL, log)
	market := marketdata.New(gecko, cache, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var uploader *reports.Uploader
	if cfg.S3Bucket != "" {
		uploader, err = reports.NewUploader(ctx, cfg.S3Bucket, cfg.S3Prefix, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 uploader")
		}
	}

	service := reports.NewService(market, uploader, cfg.ReportDir, log)
	report, err := service.Generate(ctx, portfolios)
	if err != nil {
		log.Fatal().Err(err).Msg("Report generation failed")
	}

	log.Info().
		Str("path", report.TextPath).
		Int("charts", len(report.ChartPaths)).
		Int("uploaded", len(report.Uploaded)).
		Msg("Report generated")
}
