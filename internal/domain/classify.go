package domain

import (
	"fmt"
	"strings"
)

// ParkingType is the normalized curb zone class.
type ParkingType string

const (
	ParkingMetered      ParkingType = "Metered"      // costs money to park
	ParkingNoParking    ParkingType = "NoParking"    // illegal to park
	ParkingFree         ParkingType = "Free"         // anyone may park for free
	ParkingRestricted   ParkingType = "Restricted"   // dedicated use
	ParkingResidential  ParkingType = "Residential"  // residential permit required
	ParkingUnclassified ParkingType = "Unclassified" // zone type not in any list
)

const (
	noParkingAnytime = "No Parking Anytime"
	noLimit          = "No Limit"
)

// Every zone type string the dataset emits belongs to exactly one list.
var parkingTypeMembers = map[ParkingType][]string{
	ParkingNoParking: {
		"Red Zone", "Driveway", "Red Zone (Fire Hydrant)", "Alley", "White Zone",
		"Yellow Zone", "No Parking AnyTime", "No Parking Any Time", "Fire Hydrant",
		"Crosswalk", "Crosswalk (No Markings)", "No Parking Passenger Loading",
		"R X R", "Cross Hatching", "Taxi Zone", "Bus Only", "Official Vehicle Only",
		"Fire Lane", "Construction", "Passenger Loading Zone", "Bike Parking",
	},
	ParkingMetered: {
		"Single Space Meter", "Pay & Display Space", "Pay & Display (Meter In Space)",
		"Single Space Meter (Double Space)", "Pay-by-plate", "Pay-by-plate meter in space",
	},
	ParkingFree: {
		"RT", "Green Zone", "Time Zone", "No Restrictions",
	},
	ParkingRestricted: {
		"Motorcycle Parking", "Blue Zone", "Dedicated Car Share",
	},
	ParkingResidential: {
		"Residential Zone",
	},
}

// Time limits under which a vehicle cannot stay for a full enforcement period.
var timeLimitViolations = map[string]struct{}{
	noParkingAnytime: {},
	"30 Minutes":     {},
	"15 Minutes":     {},
	"1 Hour":         {},
	"90 Minutes":     {},
	"5 Minutes":      {},
}

// Zone types reserved for uses other than general parking.
var zoneTypeViolations = setOf(parkingTypeMembers[ParkingNoParking])

var parkingTypeIndex = indexMembers(parkingTypeMembers)

// Classification is the static category of a location.
type Classification struct {
	TimeLimit   *string     `json:"timeLimit"`
	ParkingType ParkingType `json:"parkingType"`
}

// ViolationFlags mark locations whose category restricts parking regardless
// of the current time.
type ViolationFlags struct {
	TimeLimit bool `json:"timeLimitViolation"`
	ZoneType  bool `json:"zoneTypeViolation"`
}

// Classify derives the classification of a record from its raw category strings.
func Classify(rec RawRecord) Classification {
	return Classification{
		TimeLimit:   ClassifyTimeLimit(rec.TimeLimit),
		ParkingType: ClassifyParkingType(rec.PkgType),
	}
}

// ClassifyTimeLimit returns nil for a blank or "No Limit" time limit and the
// trimmed string otherwise.
func ClassifyTimeLimit(limit string) *string {
	limit = strings.TrimSpace(limit)
	if limit == "" || limit == noLimit {
		return nil
	}
	return &limit
}

// ClassifyParkingType maps a raw zone type to its class. A blank zone type is
// Free; an unlisted one is Unclassified.
func ClassifyParkingType(pkgType string) ParkingType {
	pkgType = strings.TrimSpace(pkgType)
	if pkgType == "" {
		return ParkingFree
	}
	if t, ok := parkingTypeIndex[pkgType]; ok {
		return t
	}
	return ParkingUnclassified
}

// Violations derives the violation flags of a record.
func Violations(rec RawRecord) ViolationFlags {
	_, timeLimit := timeLimitViolations[strings.TrimSpace(rec.TimeLimit)]
	_, zoneType := zoneTypeViolations[strings.TrimSpace(rec.PkgType)]
	return ViolationFlags{TimeLimit: timeLimit, ZoneType: zoneType}
}

func indexMembers(members map[ParkingType][]string) map[string]ParkingType {
	index := make(map[string]ParkingType)
	for class, values := range members {
		for _, v := range values {
			if prev, dup := index[v]; dup {
				panic(fmt.Sprintf("zone type %q listed under both %s and %s", v, prev, class))
			}
			index[v] = class
		}
	}
	return index
}

func setOf(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
