// Package geo provides great-circle distance helpers.
package geo

import (
	"math"

	"github.com/okian/eventpulse/internal/domain/model"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two points.
func Haversine(a, b model.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceKm returns the distance from origin to an event coordinate, or
// model.UnknownDistance when either side is missing.
func DistanceKm(origin, target *model.Coordinate) float64 {
	if origin == nil || target == nil {
		return model.UnknownDistance
	}
	return Haversine(*origin, *target)
}

// Valid reports whether c lies within the latitude/longitude ranges.
func Valid(c model.Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}
