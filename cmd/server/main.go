package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homeyield/server/config"
	"homeyield/server/internal/api"
	"homeyield/server/internal/catalog"
	"homeyield/server/internal/database"
	"homeyield/server/internal/finance"
	"homeyield/server/internal/marketdata"
	"homeyield/server/internal/processor"
	"homeyield/server/internal/queue"
	"homeyield/server/internal/risk"
	"homeyield/server/internal/riskseries"
	"homeyield/server/internal/scheduler"
	"homeyield/server/internal/search"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Data.DatabasePath)

	// Initialize database
	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Load the region mapping
	regions, err := config.LoadRegionMap(cfg.Data.RegionsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load region mapping")
	}

	// Load the initial catalog snapshot
	provider := catalog.NewProvider(db, logger)
	if err := provider.Reload(); err != nil {
		logger.WithError(err).Fatal("Failed to load catalog")
	}

	// Market-data store and risk service
	fetcher := marketdata.NewHTTPFetcher(logger, time.Duration(cfg.MarketData.FetchTimeout)*time.Second)
	store := marketdata.NewStore(logger, cfg.MarketData.CacheDir,
		time.Duration(cfg.MarketData.MaxDataAgeDays)*24*time.Hour, fetcher)

	riskCalc := riskseries.NewCalculator(logger, cfg.Risk.WorkerCount)
	riskService, err := risk.NewService(riskCalc, store,
		time.Duration(cfg.Risk.ComputeBudget)*time.Second,
		cfg.Risk.VaRConfidence, cfg.Risk.CacheSize, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize risk service")
	}
	provider.OnReload(riskService.Purge)

	// Ingest pipeline
	gormDB, err := database.OpenGorm(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open ingest database handle")
	}
	ingestQueue := queue.NewIngestQueue(cfg.Ingest.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, ingestQueue, cfg, logger)
	batchProcessor.Start()
	ingestQueue.Start()
	defer func() {
		ingestQueue.Close()
		batchProcessor.Stop()
	}()

	// Background refresh of market data and the catalog snapshot
	refreshScheduler := scheduler.NewScheduler(store, provider, logger)
	if err := refreshScheduler.Start(cfg.MarketData.RefreshSchedule); err != nil {
		logger.WithError(err).Fatal("Failed to start refresh scheduler")
	}
	defer refreshScheduler.Stop()

	// Listing pipeline and HTTP surface
	engine := search.NewEngine(finance.NewCalculator(), regions, logger)
	handler := api.NewHandler(provider, engine, riskService, api.NewMemorySavedStore(), regions,
		ingestQueue, cfg.Ingest.MaxBatchSize, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
