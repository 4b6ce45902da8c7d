package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/observability"
)

// ErrNoSnapshot is returned by queries issued before the first snapshot loads.
var ErrNoSnapshot = errors.New("parking data not loaded yet")

// Service answers spot queries against the active snapshot.
type Service struct {
	store       *Store
	geocoder    domain.Geocoder
	horizonDays int
	location    *time.Location
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService creates a query Service. Pass a nil geocoder to disable address
// queries. Timelines are expanded over horizonDays in the given time zone.
func NewService(store *Store, geocoder domain.Geocoder, horizonDays int, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:       store,
		geocoder:    geocoder,
		horizonDays: horizonDays,
		location:    loc,
		logger:      logger,
		metrics:     metrics,
	}
}

// AddressLookupEnabled reports whether FindSpotByAddress can succeed.
func (s *Service) AddressLookupEnabled() bool {
	return s.geocoder != nil
}

// FindSpot returns the regulations of the location nearest to c.
func (s *Service) FindSpot(_ context.Context, c domain.Coordinate) (domain.ParkingQueryResult, error) {
	result, err := s.resolve(c)
	s.observe("coordinate", err)
	return result, err
}

// FindSpotByAddress geocodes address and returns the regulations of the
// location nearest to it.
func (s *Service) FindSpotByAddress(ctx context.Context, address string) (domain.ParkingQueryResult, error) {
	c, err := domain.GeocodeAddress(ctx, s.geocoder, address)
	if err != nil {
		s.observe("address", err)
		return domain.ParkingQueryResult{}, err
	}
	result, err := s.resolve(c)
	s.observe("address", err)
	return result, err
}

func (s *Service) resolve(c domain.Coordinate) (domain.ParkingQueryResult, error) {
	if !c.Valid() {
		return domain.ParkingQueryResult{}, fmt.Errorf("%w: lat=%g lon=%g", domain.ErrInvalidCoordinate, c.Lat, c.Lon)
	}
	snap := s.store.Current()
	if snap == nil {
		return domain.ParkingQueryResult{}, ErrNoSnapshot
	}

	start := time.Now()
	now := domain.Clock().Now().In(s.location)
	result, err := domain.ResolveSpot(c, snap, now, s.horizonDays)
	s.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ParkingQueryResult{}, err
	}
	s.logger.Debug("spot resolved",
		"location_id", result.LocationID,
		"distance_m", result.DistanceMeters,
		"timeline_entries", len(result.Timeline),
	)
	return result, nil
}

func (s *Service) observe(by string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAddressNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrInvalidCoordinate):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	s.metrics.Queries.WithLabelValues(by, outcome).Inc()
}
