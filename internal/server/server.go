// Package server provides the HTTP server and routing for Coinfolio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"coinfolio/internal/clients/coingecko"
	"coinfolio/internal/config"
	"coinfolio/internal/modules/portfolio"
	"coinfolio/internal/modules/reports"
	"coinfolio/internal/scheduler"
)

// MarketData is the slice of the market data service the handlers need.
type MarketData interface {
	FetchAlignedSeries(ctx context.Context, assetIDs []string, days int) (*portfolio.AlignedPriceTable, error)
	CurrentPrice(ctx context.Context, assetID string) (*coingecko.SpotQuote, error)
}

// Config holds server configuration
type Config struct {
	Port       int
	Log        zerolog.Logger
	Market     MarketData
	Reports    *reports.Service
	Scheduler  *scheduler.Scheduler
	ReportJob  scheduler.Job
	Portfolios []config.PortfolioSpec
	DevMode    bool
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	market     MarketData
	reports    *reports.Service
	scheduler  *scheduler.Scheduler
	reportJob  scheduler.Job
	portfolios []config.PortfolioSpec
	startup    time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		market:     cfg.Market,
		reports:    cfg.Reports,
		scheduler:  cfg.Scheduler,
		reportJob:  cfg.ReportJob,
		portfolios: cfg.Portfolios,
		startup:    time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/metrics", s.handlePortfolioMetrics)
			r.Post("/simulate", s.handlePortfolioSimulate)
			r.Get("/chart", s.handlePortfolioChart)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/{id}/price", s.handleAssetPrice)
			r.Get("/{id}/strategy", s.handleAssetStrategy)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateReport)
		})

		r.Get("/prices/stream", s.handlePriceStream)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
