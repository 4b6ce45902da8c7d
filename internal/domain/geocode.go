package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGeocodingDisabled is returned for address queries when no geocoder is configured.
	ErrGeocodingDisabled = errors.New("address lookup is not enabled")

	// ErrAddressNotFound is returned when the geocoder has no match for an address.
	ErrAddressNotFound = errors.New("address not found")
)

// GeocodeAddress resolves an address to a coordinate. A provider response
// without coordinates is reported as ErrAddressNotFound.
func GeocodeAddress(ctx context.Context, geocoder Geocoder, address string) (Coordinate, error) {
	if geocoder == nil {
		return Coordinate{}, ErrGeocodingDisabled
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Coordinate{}, ErrAddressNotFound
	}

	result, err := geocoder.ForwardGeocode(ctx, address)
	if err != nil {
		return Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		return Coordinate{}, ErrAddressNotFound
	}
	return Coordinate{Lat: result.Lat, Lon: result.Lon}, nil
}
