package geo

import "math"

// earthRadiusKm is the mean radius of the Earth used by the haversine formula.
const earthRadiusKm = 6371

// Coord is a geographic coordinate in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers, using the haversine formula. It is symmetric and returns 0 for
// identical coordinates.
func DistanceKm(a, b Coord) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
