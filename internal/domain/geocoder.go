package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves street addresses to coordinates for address queries.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, address string) (GeocodingResult, error)
}
