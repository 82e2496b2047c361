package geospatial

import "github.com/chaugan/intelmap/internal/core/domain"

// Resample returns n points spaced evenly (by great-circle distance) along
// the polyline. The first and last points are copied exactly from the input,
// never interpolated. Input with n or fewer points is returned unchanged.
func Resample(points []domain.GeoPoint, n int) []domain.GeoPoint {
	if len(points) <= n || n < 2 {
		return points
	}

	// Cumulative distance to each vertex.
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + DistanceKm(points[i-1], points[i])
	}
	total := cum[len(cum)-1]
	if total == 0 {
		out := make([]domain.GeoPoint, n)
		for i := range out {
			out[i] = points[0]
		}
		out[n-1] = points[len(points)-1]
		return out
	}

	out := make([]domain.GeoPoint, 0, n)
	out = append(out, points[0])
	seg := 1
	for i := 1; i < n-1; i++ {
		target := total * float64(i) / float64(n-1)
		for seg < len(cum)-1 && cum[seg] < target {
			seg++
		}
		prev, next := points[seg-1], points[seg]
		span := cum[seg] - cum[seg-1]
		t := 0.0
		if span > 0 {
			t = (target - cum[seg-1]) / span
		}
		out = append(out, domain.GeoPoint{
			Lon: prev.Lon + (next.Lon-prev.Lon)*t,
			Lat: prev.Lat + (next.Lat-prev.Lat)*t,
		})
	}
	return append(out, points[len(points)-1])
}
