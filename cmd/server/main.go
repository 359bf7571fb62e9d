// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demandloop/backend-go/internal/analytics"
	"github.com/demandloop/backend-go/internal/api"
	"github.com/demandloop/backend-go/internal/cache"
	"github.com/demandloop/backend-go/internal/config"
	"github.com/demandloop/backend-go/internal/repository/postgres"
	"github.com/demandloop/backend-go/internal/service"
	"github.com/demandloop/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	demandRepo := postgres.NewDemandRepository(db)
	hierarchyRepo := postgres.NewHierarchyRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)

	// Initialize caches; a cache outage degrades to uncached serving
	bullwhipCache, err := cache.NewBullwhipCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("bullwhip cache unavailable, running uncached")
		bullwhipCache = cache.NewNoopBullwhipCache()
	}
	echelonCache, err := cache.NewEchelonCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("echelon cache unavailable, running uncached")
		echelonCache = cache.NewNoopEchelonCache()
	}

	// Initialize analytics components
	aggregator := analytics.NewTimeSeriesAggregator(demandRepo, cfg.Analytics.MinSaleDays)
	detector := analytics.NewSeasonalityDetector(cfg.Analytics.SeasonalPeriod)
	engine := analytics.NewForecastEngine(forecastRepo, cfg.Analytics.MovingAvgWindow, cfg.Analytics.SmoothingAlpha)
	evaluator := analytics.NewAccuracyEvaluator(demandRepo, forecastRepo, cfg.Analytics.EvalConcurrency)
	analyzer := analytics.NewOrderSmoothingAnalyzer(aggregator, demandRepo, demandRepo, cfg.Analytics.MinOrderDays, cfg.Analytics.EvalConcurrency)
	optimizer := analytics.NewMultiEchelonOptimizer(
		aggregator, demandRepo, hierarchyRepo, suggestionRepo,
		lotRuleFromConfig(cfg.Analytics),
		decimal.NewFromFloat(cfg.Analytics.UnitCost),
		cfg.Analytics.EvalConcurrency,
	)

	// Initialize services
	services := &api.Services{
		ForecastService: service.NewForecastService(aggregator, detector, engine, evaluator),
		BullwhipService: service.NewBullwhipService(analyzer, bullwhipCache),
		EchelonService:  service.NewEchelonService(optimizer, echelonCache),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func lotRuleFromConfig(cfg config.AnalyticsConfig) analytics.LotSizeRule {
	switch cfg.LotRule {
	case "fixed":
		return analytics.FixedLotRule{LotSize: cfg.FixedLotSize}
	default:
		return analytics.EOQRule{
			OrderingCost:       decimal.NewFromFloat(cfg.EOQOrderingCost),
			HoldingCostPerYear: decimal.NewFromFloat(cfg.EOQHoldingCost),
		}
	}
}
