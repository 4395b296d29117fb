// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for databases and reports (always absolute)
	Port             int
	DevMode          bool
	LogLevel         string
	CoinGeckoBaseURL string // Override for tests/proxies; empty selects the public API
	ReportDir        string
	ReportSchedule   string // 6-field cron spec for the daily report job
	PortfoliosFile   string // Path to portfolios.yaml; empty uses built-in defaults
	S3Bucket         string // Optional: upload generated reports when set
	S3Prefix         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("COINFOLIO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	reportDir := getEnv("COINFOLIO_REPORT_DIR", filepath.Join(absDataDir, "reports"))
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("COINFOLIO_PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", ""),
		ReportDir:        reportDir,
		ReportSchedule:   getEnv("REPORT_SCHEDULE", "0 0 7 * * *"), // 07:00 every day
		PortfoliosFile:   getEnv("COINFOLIO_PORTFOLIOS", ""),
		S3Bucket:         getEnv("REPORT_S3_BUCKET", ""),
		S3Prefix:         getEnv("REPORT_S3_PREFIX", "reports"),
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
