package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/cache"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// PageStore holds fetched pages for a limited time.
type PageStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, page string, ttl time.Duration) error
}

// CachedFetcher serves recently fetched pages from a PageStore. Failures
// are never cached.
type CachedFetcher struct {
	inner   domain.PageFetcher
	store   PageStore
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewCachedFetcher(inner domain.PageFetcher, store PageStore, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, store: store, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *CachedFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	key := "page:" + pageURL
	page, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("page cache read failed", "url", pageURL, "error", err)
	}
	if ok {
		c.metrics.PageCache.WithLabelValues("hit").Inc()
		return page, nil
	}
	c.metrics.PageCache.WithLabelValues("miss").Inc()

	page, err = c.inner.FetchPage(ctx, pageURL)
	if err != nil || page == domain.FetchErrorSentinel {
		return page, err
	}
	if err := c.store.Set(ctx, key, page, c.ttl); err != nil {
		c.logger.Warn("page cache write failed", "url", pageURL, "error", err)
	}
	return page, nil
}

// MemoryStore is a process-local PageStore. Its TTL is fixed at creation.
type MemoryStore struct {
	lru *cache.LRU[string]
}

func NewMemoryStore(maxEntries int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{lru: cache.NewWithClock[string](maxEntries, ttl, clock)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	page, ok := m.lru.Get(key)
	return page, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, page string, _ time.Duration) error {
	m.lru.Put(key, page)
	return nil
}

// RedisStore shares cached pages between skill instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url and verifies it answers.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	page, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return page, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, page string, ttl time.Duration) error {
	return r.client.Set(ctx, key, page, ttl).Err()
}

// CheckReadiness pings Redis.
func (r *RedisStore) CheckReadiness(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
