package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"primex/api/internal/cache"
	"primex/api/internal/config"
	"primex/api/internal/database"
	"primex/api/internal/handlers"
	"primex/api/internal/jobs"
	"primex/api/internal/log"
	"primex/api/internal/monitor"
	"primex/api/internal/repository"
	"primex/api/internal/server"
	"primex/api/internal/service"
	"primex/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	eventRepo := repository.NewSecurityEventRepository(dbPool)
	blockRepo := repository.NewBlockedAddressRepository(dbPool)

	securityMonitor := monitor.New(eventRepo, blockRepo, redisClient, cfg.Monitor, logger)
	if err := securityMonitor.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init security monitor")
	}

	var retention *service.RetentionService
	if cfg.Storage.Endpoint != "" {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure archive bucket failed")
		}
		retention = service.NewRetentionService(eventRepo, objectStore, cfg.Monitor.ArchiveRetention, logger)
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, securityMonitor, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(securityMonitor, retention, cfg.Monitor.CleanupInterval, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, securityMonitor, dbPool, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	securityMonitor *monitor.Monitor,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()
	securityMonitor.Close()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
