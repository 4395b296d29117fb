package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"coinfolio/internal/clientdata"
	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/config"
	"coinfolio/internal/database"
	"coinfolio/internal/marketdata"
	"coinfolio/internal/modules/reports"
	"coinfolio/internal/scheduler"
	"coinfolio/internal/server"
	"coinfolio/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Coinfolio")

	// Load portfolio definitions
	portfolios, err := config.LoadPortfolios(cfg.PortfoliosFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load portfolios")
	}

	// Initialize client data cache
	db, err := database.Open(filepath.Join(cfg.DataDir, "client_data.db"), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data database")
	}
	defer db.Close()

	cache := clientdata.NewRepository(db)
	if err := cache.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	// Market data: CoinGecko behind the cache
	gecko := coingecko.NewClient(cfg.CoinGeckoBaseURL, log)
	market := marketdata.New(gecko, cache, log)

	// Report service with optional S3 upload
	var uploader *reports.Uploader
	if cfg.S3Bucket != "" {
		uploader, err = reports.NewUploader(context.Background(), cfg.S3Bucket, cfg.S3Prefix, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 uploader")
		}
	}
	reportService := reports.NewService(market, uploader, cfg.ReportDir, log)

	// Initialize scheduler and background jobs
	sched := scheduler.New(log)
	reportJob := scheduler.NewDailyReportJob(reportService, portfolios, log)
	if err := sched.AddJob(cfg.ReportSchedule, reportJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily report job")
	}
	if err := sched.AddJob("@hourly", scheduler.NewCacheCleanupJob(cache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Market:     market,
		Reports:    reportService,
		Scheduler:  sched,
		ReportJob:  reportJob,
		Portfolios: portfolios,
		DevMode:    cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
