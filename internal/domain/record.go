package domain

// RawRecord is one curb segment from the upstream dataset, with property
// names lowercased. Blank strings mean the field was null or empty upstream.
type RawRecord struct {
	GISObjID int64 `json:"gisobjid"`
	ObjectID int64 `json:"objectid"`

	Address string `json:"address"`
	AorB    string `json:"aorb"`
	Street  string `json:"street"`
	Suffix  string `json:"suffix"`
	Prefix  string `json:"prefix"`
	EvenOdd string `json:"evenodd"`

	TimeLimit       string `json:"timelimit"`
	PkgType         string `json:"pkgtype"`
	AorP            string `json:"aorp"`
	PermitArea      string `json:"permitarea"`
	MaxRate         string `json:"maxrate"`
	EventArea       string `json:"evtarea"`
	ParkMobile      string `json:"parkmob"`
	TimeRestriction string `json:"tmstrcn"`

	ActiveDays     string `json:"pkgenday"`
	ActiveBegin    string `json:"enbegin"`
	ActiveEnd      string `json:"enend"`
	SweepingDay    string `json:"pkgsday"`
	SweepingBegin  string `json:"pkgswbeg"`
	SweepingEnd    string `json:"pkgswend"`
	NoParkingDays  string `json:"noparkdays"`
	NoParkingTimes string `json:"noparktime"`

	Lon float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// LocationID returns the record's stable identity: objectid when set,
// otherwise gisobjid.
func (r RawRecord) LocationID() int64 {
	if r.ObjectID != 0 {
		return r.ObjectID
	}
	return r.GISObjID
}

// Location is the identity and position of a regulated curb segment.
type Location struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether c lies within latitude and longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// StreetAddress holds the address components carried through to query results.
type StreetAddress struct {
	Address string `json:"address,omitempty"`
	AorB    string `json:"aorb,omitempty"`
	Street  string `json:"street,omitempty"`
	Suffix  string `json:"suffix,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	EvenOdd string `json:"evenodd,omitempty"`
}

func addressOf(r RawRecord) StreetAddress {
	return StreetAddress{
		Address: r.Address,
		AorB:    r.AorB,
		Street:  r.Street,
		Suffix:  r.Suffix,
		Prefix:  r.Prefix,
		EvenOdd: r.EvenOdd,
	}
}
