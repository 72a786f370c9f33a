package domain

import (
	"context"
	"log/slog"
)

// CityFromAddress picks the city to look up for a device address. The
// address's own city wins; otherwise the postal code is geocoded. Returns ""
// when no city can be determined, including when geocoder is nil or fails
// (graceful degradation).
func CityFromAddress(ctx context.Context, addr *Address, geocoder Geocoder, logger *slog.Logger) string {
	if addr == nil {
		return ""
	}
	if addr.City != "" {
		return addr.City
	}
	if addr.PostalCode == "" || geocoder == nil {
		return ""
	}

	result, err := geocoder.ForwardGeocode(ctx, addr.PostalCode, addr.StateOrRegion)
	if err != nil {
		logger.Warn("postal code geocoding failed",
			"postal_code", addr.PostalCode,
			"state", addr.StateOrRegion,
			"error", err,
		)
		return ""
	}
	return result.PlaceName
}
