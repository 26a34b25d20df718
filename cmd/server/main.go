package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/config"
	httpDelivery "github.com/sana-a-khan/fabrix/internal/delivery/http"
	"github.com/sana-a-khan/fabrix/internal/domain"
	"github.com/sana-a-khan/fabrix/internal/infrastructure/cache"
	"github.com/sana-a-khan/fabrix/internal/infrastructure/mongostore"
	"github.com/sana-a-khan/fabrix/internal/infrastructure/openai"
	"github.com/sana-a-khan/fabrix/internal/infrastructure/supabase"
	"github.com/sana-a-khan/fabrix/internal/observability"
	"github.com/sana-a-khan/fabrix/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "fabrix-backend",
	})

	logger.Info().
		Str("version", httpDelivery.Version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("store", cfg.Store.Type).
		Str("cache", cfg.Cache.Type).
		Msg("starting fabrix backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Initialize infrastructure dependencies
	profiles := supabase.NewStore(supabase.Config{
		URL:     cfg.Supabase.URL,
		Key:     cfg.Supabase.Key,
		Timeout: cfg.Supabase.Timeout,
	}, logger)

	var products domain.ProductStore = profiles
	if cfg.Store.Type == "mongo" {
		mongo, err := mongostore.NewStore(ctx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Timeout:    cfg.Mongo.Timeout,
		}, logger)
		if err != nil {
			return err
		}
		defer mongo.Close(context.Background())
		products = mongo
	}

	analysisCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	extractor := openai.NewClient(openai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.Model,
		Temperature:       cfg.OpenAI.Temperature,
		Timeout:           cfg.OpenAI.Timeout,
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		Burst:             cfg.OpenAI.Burst,
	}, logger)
	logger.Info().Str("base_url", cfg.OpenAI.BaseURL).Str("model", cfg.OpenAI.Model).Msg("extraction provider configured")

	// Initialize usecase layer
	analysis := usecase.NewAnalysisService(profiles, extractor, analysisCache, usecase.AnalysisServiceConfig{
		CacheTTL:          cfg.Cache.TTL,
		DailyLimitFree:    cfg.Quota.DailyLimitFree,
		DailyLimitPremium: cfg.Quota.DailyLimitPremium,
	}, logger)
	productService := usecase.NewProductService(products, logger)

	handler := httpDelivery.NewHandler(analysis, productService, usecase.NewCandidateSelector(), logger)
	router := httpDelivery.SetupRouter(cfg, handler, profiles, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, func(), error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache(0)
	return memoryCache, func() { memoryCache.Close() }, nil
}
