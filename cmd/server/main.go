package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hackclub/lazythumbs/internal/cache"
	"github.com/hackclub/lazythumbs/internal/config"
	httphandler "github.com/hackclub/lazythumbs/internal/http"
	"github.com/hackclub/lazythumbs/internal/imageproc"
	"github.com/hackclub/lazythumbs/internal/imageproc/vips"
	"github.com/hackclub/lazythumbs/internal/logging"
	"github.com/hackclub/lazythumbs/internal/storage"
	"github.com/hackclub/lazythumbs/internal/thumbs"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Info().
		Str("source", cfg.SourceBackend).
		Str("storage", cfg.StorageBackend).
		Str("cache", cfg.CacheBackend).
		Str("encoder", cfg.ImageEncoder).
		Msg("starting lazythumbs server")

	checks := map[string]httphandler.HealthChecker{}

	// Source images
	sources, err := newSourceReader(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize source backend")
	}

	// Rendered thumbnail storage
	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage backend")
	}

	// Negative-result cache
	cacheStore, closeCache, err := newCache(cfg, checks)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache")
	}
	defer closeCache()

	matte, err := cfg.MatteColor()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid matte color")
	}

	// Initialize image engine
	engine := imageproc.NewEngine(imageproc.NewStoreLoader(sources), matte)

	var encoder imageproc.Encoder = imageproc.StdEncoder{}
	if cfg.ImageEncoder == "vips" {
		encoder = vips.NewEncoder()
	}

	// Initialize thumbnail service
	thumbService := thumbs.NewService(engine, encoder, cacheStore, store, thumbs.Config{
		URLPrefix:    cfg.URLPrefix,
		Quality:      cfg.Quality,
		Optimize:     cfg.Optimize,
		Progressive:  cfg.Progressive,
		SuccessTTL:   cfg.SuccessTTL(),
		NotFoundTTL:  cfg.NotFoundTTL(),
		MaxDimension: cfg.MaxDimension,
	}, logger)

	thumbHandler := thumbs.NewHandler(thumbService, logger)

	// Initialize HTTP server
	server := httphandler.NewServer(cfg.URLPrefix, cfg.AllowedOrigins, logger, thumbHandler, checks)

	httpServer := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        server.Routes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   90 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Port).Str("prefix", cfg.URLPrefix).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func r2Options(cfg *config.Config, prefix string) storage.R2Options {
	return storage.R2Options{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2Bucket,
		Endpoint:        cfg.R2S3Endpoint,
		Prefix:          prefix,
	}
}

func newSourceReader(ctx context.Context, cfg *config.Config) (storage.Reader, error) {
	switch cfg.SourceBackend {
	case "r2":
		return storage.NewR2Store(ctx, r2Options(cfg, cfg.R2SourcePrefix))
	case "http":
		return storage.NewHTTPSource(cfg.SourceBaseURL)
	default:
		return storage.NewFileStore(cfg.MediaRoot)
	}
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "r2" {
		return storage.NewR2Store(ctx, r2Options(cfg, ""))
	}
	return storage.NewFileStore(cfg.StorageRoot)
}

func newCache(cfg *config.Config, checks map[string]httphandler.HealthChecker) (cache.Store, func(), error) {
	if cfg.CacheBackend == "redis" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		checks["redis"] = redisStore.Ping
		return redisStore, func() {
			if err := redisStore.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close redis client")
			}
		}, nil
	}

	memoryStore, err := cache.NewMemoryStore(cfg.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	return memoryStore, func() {}, nil
}
