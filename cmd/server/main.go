package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compscope/server/config"
	"compscope/server/internal/alerts"
	"compscope/server/internal/api"
	"compscope/server/internal/database"
	"compscope/server/internal/geocoding"
	"compscope/server/internal/listings"
	"compscope/server/internal/notify"
	"compscope/server/internal/queue"
	"compscope/server/internal/scheduler"
	"compscope/server/internal/syncer"
	"compscope/server/internal/worker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Ensure the database directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Geocode deals that were created without coordinates
	cacheDir := filepath.Join(os.TempDir(), "compscope", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)
	logger.Info("Starting initial geocoding of deals without coordinates...")
	if err := geocoding.Backfill(db, geocoder, logger); err != nil {
		logger.WithError(err).Error("Failed to update coordinates")
	}

	provider := listings.NewClient(cfg.Listings.BaseURL, logger)
	dealSyncer := syncer.NewSyncer(db, provider, cfg, logger)

	// Background sync pipeline: freshness sweeps feed the job queue, workers
	// drain it with retries. The queue buffers jobs until workers pull them,
	// so the startup sweep can run before the workers are up.
	jobQueue := queue.NewJobQueue(cfg.Sync.QueueSize, logger)
	defer jobQueue.Close()

	notifierSvc := notify.NewService(logger)
	if notifierCfg, err := db.GetNotifierConfig(); err == nil && notifierCfg != nil {
		notifierSvc.UpdateConfig(notifierCfg)
	}

	syncWorker := worker.NewWorker(dealSyncer, db, jobQueue, cfg, logger)
	syncWorker.SetNotifier(alerts.NewGenerator(db, logger), notifierSvc)
	syncWorker.Start()
	defer syncWorker.Stop()

	sched := scheduler.NewScheduler(db, jobQueue, logger)
	sched.Start()
	defer sched.Stop()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	api.SetupRoutes(router, db, dealSyncer)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on port %d", cfg.Server.Port)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
