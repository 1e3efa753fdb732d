package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koios/api-widget/internal/config"
	"github.com/koios/api-widget/internal/dispatch"
	"github.com/koios/api-widget/internal/handlers"
	"github.com/koios/api-widget/internal/host"
	"github.com/koios/api-widget/internal/pixlet"
	widgetredis "github.com/koios/api-widget/internal/redis"
	"github.com/koios/api-widget/internal/store"
	"github.com/koios/api-widget/internal/updater"
	"github.com/koios/api-widget/pkg/models"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manifest, err := models.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logger.Fatal("Failed to load provider manifest", zap.Error(err))
	}

	// Foreground app transport
	var (
		redisClient *widgetredis.Client
		rdb         goredis.UniversalClient
		app         handlers.ForegroundApp = handlers.NewLogApp(logger)
	)
	if cfg.Redis.Enabled {
		redisClient, err = widgetredis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		rdb = redisClient.Redis()
		app = widgetredis.NewRelay(redisClient)
	}

	snapshots, err := store.Open(cfg.Store, rdb, cfg.Redis.SnapshotKey)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", zap.Error(err))
	}

	eventHandler := handlers.NewEventHandler(app, logger)
	dispatcher := dispatch.NewDispatcher(eventHandler, logger)

	var painter host.Painter
	if cfg.Preview.Enabled {
		width, height := cfg.Preview.Width, cfg.Preview.Height
		if manifest.SourcePath != "" {
			width, height = manifest.PreviewWidth, manifest.PreviewHeight
		}
		painter = pixlet.NewPainter(width, height, logger)
	}
	viewHost := host.NewHost(dispatcher, painter, logger)

	widgetUpdater := updater.NewUpdater(snapshots, viewHost, cfg.Render, logger)

	if redisClient != nil {
		consumer := widgetredis.NewConsumer(redisClient, widgetUpdater, logger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("Redis consumer failed", zap.Error(err))
			}
		}()
	}

	// Create HTTP server for the widget API
	widgetHandler := handlers.NewWidgetHandler(widgetUpdater, viewHost, dispatcher, snapshots, manifest, logger)
	if redisClient != nil {
		widgetHandler.WithRedis(redisClient)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      widgetHandler.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	logger.Info("Server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", manifest.ID),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("preview", painter != nil))

	// Wait for interrupt signal or a fatal server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Stop the consumer before the pool it feeds
	cancel()
	widgetUpdater.Stop()

	logger.Info("Server shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
