package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	"github.com/sony/gobreaker"
)

// BreakerFetcher wraps a fetcher with one circuit breaker per host. An open
// breaker fails fetches without touching the network.
type BreakerFetcher struct {
	inner    domain.PageFetcher
	failures uint32
	timeout  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerFetcher opens a host's breaker after failures consecutive errors
// and probes it again after timeout.
func NewBreakerFetcher(inner domain.PageFetcher, failures uint32, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *BreakerFetcher {
	return &BreakerFetcher{
		inner:    inner,
		failures: failures,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (b *BreakerFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	host := hostOf(pageURL)
	res, err := b.breaker(host).Execute(func() (interface{}, error) {
		return b.inner.FetchPage(ctx, pageURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.metrics.PageFetches.WithLabelValues("breaker_open").Inc()
		return "", fmt.Errorf("fetch %s: %w", host, err)
	}
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (b *BreakerFetcher) breaker(host string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("page breaker state changed", "host", name, "from", from.String(), "to", to.String())
			b.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	b.breakers[host] = cb
	return cb
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	return u.Host
}
