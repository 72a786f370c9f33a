// Package web fetches municipal snow emergency pages.
//
// The pieces compose as decorators around domain.PageFetcher:
//
//	CachedFetcher -> BreakerFetcher -> Client
package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
)

// maxPageBytes bounds how much of a page is read.
const maxPageBytes = 2 << 20

const userAgent = "snow-emergency-skill/1.0 (+https://github.com/couchcryptid/snow-emergency-skill)"

// Client fetches page text over HTTP. It implements domain.PageFetcher.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a page client that gives up after timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchPage returns the body of url. Non-2xx responses are errors.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	start := time.Now()
	page, err := c.get(ctx, url)
	c.metrics.PageFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.PageFetches.WithLabelValues("error").Inc()
		return "", err
	}
	c.metrics.PageFetches.WithLabelValues("success").Inc()
	c.logger.Debug("page fetched", "url", url, "bytes", len(page), "duration", time.Since(start))
	return page, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
