package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/galaxytools/craft-tracker/internal/catalog"
	"github.com/galaxytools/craft-tracker/internal/config"
	"github.com/galaxytools/craft-tracker/internal/database"
	"github.com/galaxytools/craft-tracker/internal/freshness"
	"github.com/galaxytools/craft-tracker/internal/handlers"
	"github.com/galaxytools/craft-tracker/internal/httpserver"
	"github.com/galaxytools/craft-tracker/internal/mailstore"
	"github.com/galaxytools/craft-tracker/internal/ratelimit"
	"github.com/galaxytools/craft-tracker/internal/sales"
	"github.com/galaxytools/craft-tracker/internal/soapcache"
	"github.com/galaxytools/craft-tracker/internal/upstream"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logrus.New()

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Database initialization failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := ratelimit.New(logger, cfg.SoapRateLimit, cfg.SoapRateWindow)
	go limiter.StartSweeper(ctx, cfg.RateSweepPeriod)

	cache := soapcache.New(logger, soapcache.NewGormStore(db))
	scheduler := soapcache.NewScheduler(logger, cache, cfg.CleanupInterval, cfg.CleanupThreshold)
	go scheduler.Start(ctx)

	soapClient := upstream.NewClient(logger, cfg, limiter, cache)
	tracker := freshness.NewTracker(logger, freshness.NewGormStore(db))
	syncer := catalog.NewSyncer(logger, db, tracker, soapClient, cfg.ResourceFreshness, cfg.SchematicFreshness)

	mails := mailstore.NewS3Store(logger, cfg)
	importer := sales.NewImporter(logger, db, mails)

	api := handlers.NewAPI(logger, db, soapClient, syncer, cache, scheduler, limiter, importer, mails)

	clients := handlers.NewClientLimiter(cfg)
	go clients.StartSweeper(ctx)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger, db))
	r.Use(clients.Middleware)
	handlers.RegisterRoutes(r, api)

	if err := httpserver.Run(ctx, logger, cfg.ListenAddr, r); err != nil {
		logger.WithError(err).Fatal("HTTP server failed")
	}
}
