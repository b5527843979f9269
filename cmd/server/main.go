package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rentradar/server/config"
	"rentradar/server/internal/api"
	"rentradar/server/internal/compare"
	"rentradar/server/internal/database"
	"rentradar/server/internal/geocoding"
	"rentradar/server/internal/maps"
	"rentradar/server/internal/poi"
	"rentradar/server/internal/processor"
	"rentradar/server/internal/queue"
	"rentradar/server/internal/searches"
	"rentradar/server/internal/session"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Get the current working directory
	currentDir, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get current directory")
	}

	dataDir := filepath.Join(currentDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}

	dbPath := filepath.Join(dataDir, "rentradar.db")
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Separate gorm handle over the same file for the ingest upsert path
	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	// Initialize geocoder
	cacheDir := filepath.Join(os.TempDir(), "rentradar", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	// Run initial geocoding for listings without coordinates
	logger.Info("Starting initial geocoding of listings without coordinates...")
	if err := db.UpdateMissingCoordinates(geocoder); err != nil {
		logger.WithError(err).Error("Failed to update coordinates")
	}

	// Listing ingest pipeline
	listings := queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, listings, cfg, logger)
	batchProcessor.Start()
	defer batchProcessor.Stop()
	listings.Start()
	defer listings.Close()

	// Maps provider, POI locator and comparison sessions
	if cfg.Maps.APIKey == "" {
		logger.Warn("No maps API key configured; comparison sessions will run in static mode")
	}
	requestTimeout := time.Duration(cfg.Maps.RequestTimeout) * time.Second
	google := maps.NewGoogleClient(cfg.Maps.APIKey, requestTimeout, logger)
	locator := poi.NewLocator(google, cfg.Maps.CategoryRadius, cfg.Maps.KeywordRadius,
		time.Duration(cfg.Maps.PlacesCacheTTL)*time.Second, logger)
	recent := searches.NewStore(cfg.RecentSearches.Path, cfg.RecentSearches.Cap, logger)
	fallback := session.FallbackRegion(config.DefaultCity)
	comparisons := compare.NewService(db, locator, google, recent, fallback, cfg.Maps.APIKey != "", logger)

	sweeper := compare.NewSweeper(comparisons,
		time.Duration(cfg.Sessions.SweepInterval)*time.Second,
		time.Duration(cfg.Sessions.IdleTTL)*time.Second, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize handler and router
	handler := api.NewHandler(db, geocoder, locator, comparisons, listings, recent, cfg.Maps.APIKey, requestTimeout, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
