package domain

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceMeters returns the great-circle distance between a and b in meters.
func DistanceMeters(a, b Coordinate) float64 {
	return HaversineKm(a, b) * 1000
}

// Nearest returns the location closest to c and its distance in meters.
// Exact distance ties go to the lowest location id. It returns ErrNotFound
// when locations is empty.
func Nearest(c Coordinate, locations []Location) (Location, float64, error) {
	i, meters, err := nearestIndex(c, locations)
	if err != nil {
		return Location{}, 0, err
	}
	return locations[i], meters, nil
}

func nearestIndex(c Coordinate, locations []Location) (int, float64, error) {
	if len(locations) == 0 {
		return 0, 0, ErrNotFound
	}

	best, bestMeters := 0, math.Inf(1)
	for i, loc := range locations {
		d := DistanceMeters(c, Coordinate{Lat: loc.Lat, Lon: loc.Lon})
		if d < bestMeters || (d == bestMeters && loc.ID < locations[best].ID) {
			best, bestMeters = i, d
		}
	}
	return best, bestMeters, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
