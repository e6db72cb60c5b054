package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmIdenticalCoordinates(t *testing.T) {
	coords := []Coord{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: -179.9},
	}

	for _, c := range coords {
		assert.Zero(t, DistanceKm(c, c))
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	pairs := [][2]Coord{
		{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}},
		{{Lat: 51.5074, Lng: -0.1278}, {Lat: 48.8566, Lng: 2.3522}},
		{{Lat: -10, Lng: 170}, {Lat: 10, Lng: -170}},
	}

	for _, p := range pairs {
		assert.Equal(t, DistanceKm(p[0], p[1]), DistanceKm(p[1], p[0]))
	}
}

func TestDistanceKmKnownDistances(t *testing.T) {
	// One degree of latitude is roughly 111.19 km on a 6371 km sphere
	oneDegreeLat := DistanceKm(Coord{Lat: 0, Lng: 0}, Coord{Lat: 1, Lng: 0})
	assert.InDelta(t, 111.19, oneDegreeLat, 0.1)

	// The adjacent-report scenario: ~0.157 km apart
	adjacent := DistanceKm(Coord{Lat: 1.000, Lng: 1.000}, Coord{Lat: 1.001, Lng: 1.001})
	assert.InDelta(t, 0.157, adjacent, 0.01)

	// London to Paris, ~343 km
	cities := DistanceKm(Coord{Lat: 51.5074, Lng: -0.1278}, Coord{Lat: 48.8566, Lng: 2.3522})
	assert.InDelta(t, 343, cities, 2)
}

func TestDistanceKmNeverNegative(t *testing.T) {
	a := Coord{Lat: -89, Lng: -179}
	b := Coord{Lat: 89, Lng: 179}
	assert.GreaterOrEqual(t, DistanceKm(a, b), 0.0)
}
