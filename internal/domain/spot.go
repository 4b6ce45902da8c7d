package domain

import "time"

// ParkingQueryResult answers a spot query. It is built per query and shares
// no mutable state with the snapshot it was built from.
type ParkingQueryResult struct {
	LocationID     int64             `json:"locationId"`
	Address        StreetAddress     `json:"address"`
	Coordinate     Coordinate        `json:"coordinate"`
	Classification Classification    `json:"classification"`
	PermitArea     string            `json:"permitArea,omitempty"`
	EventArea      string            `json:"eventArea,omitempty"`
	AorP           string            `json:"aorp,omitempty"`
	MaxRate        string            `json:"maxRate,omitempty"`
	ParkMobile     string            `json:"parkMobile,omitempty"`
	DistanceMeters float64           `json:"distanceMeters"`
	Timeline       []TimelineEntry   `json:"timeline"`
	NextSweeping   *SweepingForecast `json:"nextSweeping,omitempty"`
	Violations     ViolationFlags    `json:"violations"`
}

// ResolveSpot finds the spot nearest to c in snap and assembles its result
// with a timeline expanded from now over horizonDays.
func ResolveSpot(c Coordinate, snap *Snapshot, now time.Time, horizonDays int) (ParkingQueryResult, error) {
	spot, meters, err := snap.Nearest(c)
	if err != nil {
		return ParkingQueryResult{}, err
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	rec := spot.Record
	return ParkingQueryResult{
		LocationID:     spot.Location.ID,
		Address:        addressOf(rec),
		Coordinate:     Coordinate{Lat: spot.Location.Lat, Lon: spot.Location.Lon},
		Classification: spot.Classification,
		PermitArea:     rec.PermitArea,
		EventArea:      rec.EventArea,
		AorP:           rec.AorP,
		MaxRate:        rec.MaxRate,
		ParkMobile:     rec.ParkMobile,
		DistanceMeters: meters,
		Timeline:       BuildTimeline(spot.Rules, rec.TimeLimit, now, horizonDays),
		NextSweeping:   ForecastSweeping(rec.SweepingDay, spot.Rules.Sweeping, now),
		Violations:     spot.Violations,
	}, nil
}

// FindSpot resolves the spot nearest to lat/lon using the package clock and
// the default horizon.
func FindSpot(lat, lon float64, snap *Snapshot) (ParkingQueryResult, error) {
	return ResolveSpot(Coordinate{Lat: lat, Lon: lon}, snap, clock.Now(), DefaultHorizonDays)
}
