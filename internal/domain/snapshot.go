package domain

import (
	"errors"
	"time"
)

// Spot is one location with everything derived from its raw record at load time.
type Spot struct {
	Record         RawRecord
	Location       Location
	Rules          RuleSet
	Classification Classification
	Violations     ViolationFlags
}

// Snapshot is an immutable, fully parsed copy of the dataset. A refresh builds
// a new Snapshot rather than modifying one in place.
type Snapshot struct {
	spots     []Spot
	locations []Location
	loadedAt  time.Time
}

// NewSnapshot parses every record. Records with malformed time fields are
// still included, minus the unparseable rule parts; the returned error joins
// every defect found so callers can report them.
func NewSnapshot(records []RawRecord, loadedAt time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		spots:     make([]Spot, 0, len(records)),
		locations: make([]Location, 0, len(records)),
		loadedAt:  loadedAt,
	}

	var defects []error
	for _, rec := range records {
		spot, err := NewSpot(rec)
		if err != nil {
			defects = append(defects, err)
		}
		snap.spots = append(snap.spots, spot)
		snap.locations = append(snap.locations, spot.Location)
	}
	return snap, errors.Join(defects...)
}

// NewSpot derives a Spot from one record.
func NewSpot(rec RawRecord) (Spot, error) {
	rules, err := ParseRules(rec)
	return Spot{
		Record:         rec,
		Location:       Location{ID: rec.LocationID(), Lat: rec.Lat, Lon: rec.Lon},
		Rules:          rules,
		Classification: Classify(rec),
		Violations:     Violations(rec),
	}, err
}

// Len returns the number of locations in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.spots)
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Spots returns the snapshot's spots. Callers must not modify the slice.
func (s *Snapshot) Spots() []Spot {
	if s == nil {
		return nil
	}
	return s.spots
}

// Nearest returns the spot closest to c and its distance in meters.
func (s *Snapshot) Nearest(c Coordinate) (Spot, float64, error) {
	if s == nil {
		return Spot{}, 0, ErrNotFound
	}
	i, meters, err := nearestIndex(c, s.locations)
	if err != nil {
		return Spot{}, 0, err
	}
	return s.spots[i], meters, nil
}

// LocationSummary is the normalized, time-independent view of a spot that is
// published downstream on every refresh.
type LocationSummary struct {
	LocationID     int64            `json:"locationId"`
	Address        StreetAddress    `json:"address"`
	Coordinate     Coordinate       `json:"coordinate"`
	Classification Classification   `json:"classification"`
	Violations     ViolationFlags   `json:"violations"`
	PermitArea     string           `json:"permitArea,omitempty"`
	EventArea      string           `json:"eventArea,omitempty"`
	MaxRate        string           `json:"maxRate,omitempty"`
	Rules          []RecurrenceRule `json:"rules"`
	RefreshedAt    time.Time        `json:"refreshedAt"`
}

// Summary builds the published view of s.
func (s Spot) Summary(refreshedAt time.Time) LocationSummary {
	return LocationSummary{
		LocationID:     s.Location.ID,
		Address:        addressOf(s.Record),
		Coordinate:     Coordinate{Lat: s.Location.Lat, Lon: s.Location.Lon},
		Classification: s.Classification,
		Violations:     s.Violations,
		PermitArea:     s.Record.PermitArea,
		EventArea:      s.Record.EventArea,
		MaxRate:        s.Record.MaxRate,
		Rules:          s.Rules.All(),
		RefreshedAt:    refreshedAt,
	}
}
