package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantdesk/quantdesk-go/internal/api"
	"github.com/quantdesk/quantdesk-go/internal/api/handlers"
	"github.com/quantdesk/quantdesk-go/internal/backtest"
	"github.com/quantdesk/quantdesk-go/internal/config"
	"github.com/quantdesk/quantdesk-go/internal/database"
	"github.com/quantdesk/quantdesk-go/internal/logging"
	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/middleware"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redis.Close()

	repository := database.NewBacktestRepository(db.Pool)

	// Market data: Alpaca daily bars behind a Redis cache; every successful
	// fetch refreshes the data registry.
	alpacaProvider := marketdata.NewAlpacaProvider(cfg.Alpaca, logger)
	cachedProvider := marketdata.NewCachedProvider(alpacaProvider, redis, cfg.CacheTTL(), logger)
	barProvider := marketdata.NewRecordingProvider(cachedProvider, repository, "Alpaca", logger)

	runner := backtest.NewRunner(barProvider, logger, backtest.TearSheetParams{
		PeriodsPerYear: cfg.Backtest.PeriodsPerYear,
	})
	analysisService := services.NewAnalysisService(barProvider, logger)
	riskService := services.NewRiskService(barProvider, logger)
	dcfService := services.NewDcfService(logger)
	mlService := services.NewMlService(barProvider, logger)

	fredClient := marketdata.NewFredClient(cfg.Fred, logger)
	macroService := services.NewMacroService(fredClient, logger)

	auth := middleware.NewAuthMiddleware(cfg.Security.JWTSecret)

	// Setup Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api.SetupRoutes(router, db, redis, auth, api.Handlers{
		Backtest:     handlers.NewBacktestHandler(runner, repository, logger),
		Analysis:     handlers.NewAnalysisHandler(analysisService, logger),
		Risk:         handlers.NewRiskHandler(riskService, logger),
		Fundamentals: handlers.NewFundamentalsHandler(dcfService, logger),
		Ml:           handlers.NewMlHandler(mlService, logger),
		Macro:        handlers.NewMacroHandler(macroService, logger),
		User:         handlers.NewUserHandler(db.Pool, auth, cfg.Security.BcryptCost, cfg.JWTExpiry(), logger),
		Registry:     handlers.NewRegistryHandler(repository, logger),
	})

	// Create HTTP server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}
