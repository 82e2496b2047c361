package geospatial

import (
	"math"

	"github.com/chaugan/intelmap/internal/core/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance in kilometers between two
// points using the haversine formula.
func DistanceKm(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// PathLengthKm returns the cumulative great-circle length of a polyline.
func PathLengthKm(points []domain.GeoPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
