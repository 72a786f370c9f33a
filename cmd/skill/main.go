package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/alexaapi"
	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/citydb"
	httpadapter "github.com/couchcryptid/snow-emergency-skill/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/snow-emergency-skill/internal/adapter/kafka"
	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/mapbox"
	"github.com/couchcryptid/snow-emergency-skill/internal/adapter/web"
	"github.com/couchcryptid/snow-emergency-skill/internal/apl"
	"github.com/couchcryptid/snow-emergency-skill/internal/config"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	"github.com/couchcryptid/snow-emergency-skill/internal/skill"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

// readiness is ready only when every check passes.
type readiness []interface {
	CheckReadiness(ctx context.Context) error
}

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	cities, err := citydb.Load(cfg.CityDBPath)
	if err != nil {
		logger.Error("failed to load city database", "path", cfg.CityDBPath, "error", err)
		os.Exit(1)
	}
	logger.Info("city database loaded", "cities", cities.Len(), "path", cfg.CityDBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Page fetching: cache -> per-host breaker -> HTTP.
	var fetcher domain.PageFetcher = web.NewBreakerFetcher(
		web.NewClient(cfg.FetchTimeout, metrics, logger),
		cfg.BreakerFailures, cfg.BreakerTimeout, metrics, logger,
	)
	checks := readiness{}
	var redisStore *web.RedisStore
	if cfg.FetchCacheTTL > 0 {
		var store web.PageStore
		if cfg.RedisURL != "" {
			redisStore, err = web.NewRedisStore(ctx, cfg.RedisURL)
			if err != nil {
				logger.Error("failed to connect to redis", "error", err)
				os.Exit(1)
			}
			store = redisStore
			checks = append(checks, redisStore)
			logger.Info("page cache enabled", "store", "redis", "ttl", cfg.FetchCacheTTL)
		} else {
			store = web.NewMemoryStore(cfg.FetchCacheSize, cfg.FetchCacheTTL, clockwork.NewRealClock())
			logger.Info("page cache enabled", "store", "memory", "ttl", cfg.FetchCacheTTL, "size", cfg.FetchCacheSize)
		}
		fetcher = web.NewCachedFetcher(fetcher, store, cfg.FetchCacheTTL, metrics, logger)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.LookupWriter
	var publisher skill.LookupPublisher
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewLookupWriter(cfg, metrics, logger)
		publisher = writer
		logger.Info("lookup publishing enabled", "topic", cfg.KafkaLookupTopic, "brokers", cfg.KafkaBrokers)
	}

	builder := apl.NewBuilder(cfg.AppName, cfg.LogoURL)
	router := skill.NewRouter(skill.RouterConfig{
		Cities:    cities,
		Fetcher:   fetcher,
		Addresses: alexaapi.NewClient(cfg.FetchTimeout, logger),
		Geocoder:  geocoder,
		Publisher: publisher,
		Composer:  skill.NewComposer(builder, cfg.SpeakPolicyWhenUnposted),
		Builder:   builder,
		Metrics:   metrics,
		Logger:    logger,
	})
	checks = append(readiness{router}, checks...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, router, checks, cfg.AllowedOrigins, logger)

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
