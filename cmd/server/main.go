package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openturf/territory-backend-go/internal/api"
	"github.com/openturf/territory-backend-go/internal/arbitration"
	"github.com/openturf/territory-backend-go/internal/blob"
	"github.com/openturf/territory-backend-go/internal/config"
	"github.com/openturf/territory-backend-go/internal/database"
	"github.com/openturf/territory-backend-go/internal/handler"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/remote"
	"github.com/openturf/territory-backend-go/internal/repository"
	"github.com/openturf/territory-backend-go/internal/service"
	"github.com/openturf/territory-backend-go/internal/syncq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Fatal("failed to create data directory", zap.Error(err))
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("path", cfg.DBPath))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	met := metrics.New(registry)

	blobs := blob.NewSQLiteStore(db)
	store := remote.NewRedisStore(rdb, logger)
	queue := syncq.NewQueue(blobs, store, cfg.DrainInterval, met, logger)
	engine := arbitration.NewEngine(logger)

	territories := service.NewTerritoryService(engine, store, queue, blobs, met, logger)
	sessions := repository.NewSessionRepository(db)
	tracking := service.NewTrackingService(territories, sessions, cfg.SmoothWindow, met, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	territories.LoadCache(ctx)
	go queue.Run(ctx)
	go func() {
		if err := territories.Run(ctx); err != nil {
			logger.Warn("territory subscription ended", zap.Error(err))
		}
	}()

	router := api.SetupRouter(api.Deps{
		Config:      cfg,
		Log:         logger,
		Registry:    registry,
		Auth:        handler.NewAuthHandler(cfg.JWTSecret),
		Sessions:    handler.NewSessionHandler(tracking),
		Territories: handler.NewTerritoryHandler(territories),
		Queue:       queue,
	})

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
