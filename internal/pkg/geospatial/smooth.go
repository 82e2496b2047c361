package geospatial

import "github.com/chaugan/intelmap/internal/core/domain"

// Smooth replaces every interior point with the unweighted average of itself
// and its two neighbors. Endpoints are preserved exactly. Sequences of length
// two or less are returned unchanged.
func Smooth(points []domain.GeoPoint) []domain.GeoPoint {
	if len(points) <= 2 {
		return points
	}
	out := make([]domain.GeoPoint, len(points))
	out[0] = points[0]
	out[len(points)-1] = points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		out[i] = domain.GeoPoint{
			Lon: (points[i-1].Lon + points[i].Lon + points[i+1].Lon) / 3,
			Lat: (points[i-1].Lat + points[i].Lat + points[i+1].Lat) / 3,
		}
	}
	return out
}
