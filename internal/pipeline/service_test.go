package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	return m.result, m.err
}

func loadedStore(t *testing.T) *pipeline.Store {
	t.Helper()
	snap, err := domain.NewSnapshot(testRecords(), time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	store := pipeline.NewStore()
	store.Swap(snap)
	return store
}

func useFakeClock(t *testing.T, now time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestService_FindSpot(t *testing.T) {
	// Monday 2024-01-08 noon.
	useFakeClock(t, time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC))
	metrics := newTestMetrics()
	svc := pipeline.NewService(loadedStore(t), nil, 7, time.UTC, slog.Default(), metrics)

	got, err := svc.FindSpot(context.Background(), domain.Coordinate{Lat: 38.51, Lon: -121.49})
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.LocationID)
	assert.Equal(t, domain.ParkingMetered, got.Classification.ParkingType)
	require.NotEmpty(t, got.Timeline)
	assert.Equal(t, domain.KindActive, got.Timeline[0].Type)
	assert.Equal(t, time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC), *got.Timeline[0].Begin)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Queries.WithLabelValues("coordinate", "success")), 0)
}

func TestService_FindSpot_UsesConfiguredZone(t *testing.T) {
	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	// 06:00 UTC on Tuesday is still Monday evening in Sacramento.
	useFakeClock(t, time.Date(2024, time.January, 9, 6, 0, 0, 0, time.UTC))
	svc := pipeline.NewService(loadedStore(t), nil, 1, pacific, slog.Default(), newTestMetrics())

	got, err := svc.FindSpot(context.Background(), domain.Coordinate{Lat: 38.5, Lon: -121.5})
	require.NoError(t, err)

	require.Len(t, got.Timeline, 1)
	assert.Equal(t, time.Date(2024, time.January, 8, 8, 0, 0, 0, pacific), *got.Timeline[0].Begin)
}

func TestService_FindSpot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		store   *pipeline.Store
		coord   domain.Coordinate
		want    error
		outcome string
	}{
		{"no snapshot", pipeline.NewStore(), domain.Coordinate{Lat: 38.5, Lon: -121.5}, pipeline.ErrNoSnapshot, "error"},
		{"latitude out of range", pipeline.NewStore(), domain.Coordinate{Lat: 91, Lon: 0}, domain.ErrInvalidCoordinate, "invalid"},
		{"longitude out of range", pipeline.NewStore(), domain.Coordinate{Lat: 0, Lon: -181}, domain.ErrInvalidCoordinate, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newTestMetrics()
			svc := pipeline.NewService(tt.store, nil, 7, time.UTC, slog.Default(), metrics)

			_, err := svc.FindSpot(context.Background(), tt.coord)
			require.ErrorIs(t, err, tt.want)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.Queries.WithLabelValues("coordinate", tt.outcome)), 0)
		})
	}
}

func TestService_FindSpot_EmptySnapshot(t *testing.T) {
	snap, err := domain.NewSnapshot(nil, time.Now())
	require.NoError(t, err)
	store := pipeline.NewStore()
	store.Swap(snap)
	metrics := newTestMetrics()
	svc := pipeline.NewService(store, nil, 7, time.UTC, slog.Default(), metrics)

	_, err = svc.FindSpot(context.Background(), domain.Coordinate{Lat: 38.5, Lon: -121.5})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Queries.WithLabelValues("coordinate", "not_found")), 0)
}

func TestService_FindSpotByAddress(t *testing.T) {
	useFakeClock(t, time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC))
	geocoder := &mockGeocoder{result: domain.GeocodingResult{Lat: 38.6, Lon: -121.4}}
	metrics := newTestMetrics()
	svc := pipeline.NewService(loadedStore(t), geocoder, 7, time.UTC, slog.Default(), metrics)
	require.True(t, svc.AddressLookupEnabled())

	got, err := svc.FindSpotByAddress(context.Background(), "1000 J St")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LocationID)
	assert.Equal(t, []domain.TimelineEntry{{Type: domain.KindNoParking}}, got.Timeline)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Queries.WithLabelValues("address", "success")), 0)
}

func TestService_FindSpotByAddress_Errors(t *testing.T) {
	upstream := errors.New("mapbox unavailable")

	tests := []struct {
		name     string
		geocoder domain.Geocoder
		want     error
		outcome  string
	}{
		{"disabled", nil, domain.ErrGeocodingDisabled, "error"},
		{"no match", &mockGeocoder{}, domain.ErrAddressNotFound, "not_found"},
		{"provider failure", &mockGeocoder{err: upstream}, upstream, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newTestMetrics()
			svc := pipeline.NewService(loadedStore(t), tt.geocoder, 7, time.UTC, slog.Default(), metrics)

			_, err := svc.FindSpotByAddress(context.Background(), "1000 J St")
			require.ErrorIs(t, err, tt.want)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.Queries.WithLabelValues("address", tt.outcome)), 0)
		})
	}
}
