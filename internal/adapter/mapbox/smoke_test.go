//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Live Mapbox checks. They need MAPBOX_TOKEN and are excluded from normal runs:
//
//	go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

// Rough bounding box of the city the dataset covers.
var sacramento = struct{ minLat, maxLat, minLon, maxLon float64 }{38.43, 38.69, -121.56, -121.36}

func liveClient(t *testing.T, metrics *observability.Metrics) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Skip("MAPBOX_TOKEN not set")
	}
	return NewClient(token, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
}

func TestSmoke_DowntownAddressesResolveInsideCity(t *testing.T) {
	c := liveClient(t, observability.NewMetricsForTesting())

	for _, address := range []string{
		"1000 J St, Sacramento, CA",
		"915 I St, Sacramento, CA",
		"1315 10th St, Sacramento, CA",
	} {
		t.Run(address, func(t *testing.T) {
			coord, err := domain.GeocodeAddress(context.Background(), c, address)
			require.NoError(t, err)

			assert.True(t, coord.Valid())
			assert.GreaterOrEqual(t, coord.Lat, sacramento.minLat)
			assert.LessOrEqual(t, coord.Lat, sacramento.maxLat)
			assert.GreaterOrEqual(t, coord.Lon, sacramento.minLon)
			assert.LessOrEqual(t, coord.Lon, sacramento.maxLon)
		})
	}
}

func TestSmoke_GibberishIsNotFound(t *testing.T) {
	c := liveClient(t, observability.NewMetricsForTesting())

	_, err := domain.GeocodeAddress(context.Background(), c, "qqzx vvkw 00000")

	// Mapbox may still return a weak match; either outcome is acceptable as
	// long as the call itself succeeds or reports no address.
	if err != nil {
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	}
}

func TestSmoke_CacheNormalizesAddressVariants(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(liveClient(t, metrics), 16, metrics)
	ctx := context.Background()

	first, err := cached.ForwardGeocode(ctx, "915 I St, Sacramento, CA")
	require.NoError(t, err)
	second, err := cached.ForwardGeocode(ctx, "  915 i st,   sacramento, ca ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("forward", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("forward", "hit")), 0)
}
