package domain

import (
	"context"
	"errors"
)

// ErrAddressPermission is returned when the device address is requested
// without the user having granted address access.
var ErrAddressPermission = errors.New("device address permission not granted")

// Address is the user-entered device address. Any field may be empty; many
// users only provide a postal code.
type Address struct {
	AddressLine1     string `json:"addressLine1"`
	AddressLine2     string `json:"addressLine2"`
	AddressLine3     string `json:"addressLine3"`
	DistrictOrCounty string `json:"districtOrCounty"`
	StateOrRegion    string `json:"stateOrRegion"`
	City             string `json:"city"`
	CountryCode      string `json:"countryCode"`
	PostalCode       string `json:"postalCode"`
}

// GeocodingResult contains the place a geocoding provider matched.
type GeocodingResult struct {
	PlaceName        string // city or town
	FormattedAddress string
	PostalCode       string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves free-form queries such as postal codes to places.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query, state string) (GeocodingResult, error)
}
