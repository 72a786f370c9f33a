// Package alexaapi calls the device settings API on behalf of a request.
package alexaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
)

// Client fetches device addresses. It implements alexa.AddressFetcher.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an address client that gives up after timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchAddress GETs the full address at url using the request's API token.
// A 401 or 403 means the user withdrew consent and maps to
// domain.ErrAddressPermission.
func (c *Client) FetchAddress(ctx context.Context, url, token string) (*domain.Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device address request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("device address status %d: %w", resp.StatusCode, domain.ErrAddressPermission)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("device address API error: status %d: %s", resp.StatusCode, body)
	}

	var addr domain.Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("decode device address: %w", err)
	}
	c.logger.Debug("device address fetched", "postal_code", addr.PostalCode, "has_city", addr.City != "")
	return &addr, nil
}
