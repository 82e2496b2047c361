package geospatial

import (
	"math"

	"github.com/chaugan/intelmap/internal/core/domain"
)

// Simplify reduces points to roughly maxPoints using Douglas-Peucker
// reduction. The tolerance is found by binary search, so the result may not
// hit maxPoints exactly. The first and last input points are always present,
// unmodified, in the output. Input with maxPoints or fewer points is returned
// unchanged.
//
// Perpendicular distances are computed directly in degree space. That is a
// display-scale approximation: fine for thinning geometry before rendering,
// unsuitable for metric-accurate measurements.
func Simplify(points []domain.GeoPoint, maxPoints int) []domain.GeoPoint {
	if maxPoints < 2 {
		maxPoints = 2
	}
	if len(points) <= maxPoints {
		return points
	}

	// Binary search for an epsilon whose simplification lands near maxPoints.
	// The upper bound exceeds any possible perpendicular distance, so the
	// initial candidate is always within budget.
	lo, hi := 0.0, maxExtentDeg(points)*2
	best := douglasPeucker(points, hi)
	for i := 0; i < 20; i++ {
		mid := (lo + hi) / 2
		candidate := douglasPeucker(points, mid)
		if len(candidate) > maxPoints {
			lo = mid
		} else {
			best = candidate
			hi = mid
		}
	}
	return best
}

func maxExtentDeg(points []domain.GeoPoint) float64 {
	minLon, maxLon := points[0].Lon, points[0].Lon
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, p := range points[1:] {
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
	}
	return math.Max(maxLon-minLon, maxLat-minLat)
}

func douglasPeucker(points []domain.GeoPoint, epsilon float64) []domain.GeoPoint {
	if len(points) <= 2 {
		return points
	}

	// Find the point farthest from the chord between the endpoints.
	var maxDist float64
	maxIdx := 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilon {
		return []domain.GeoPoint{first, last}
	}

	left := douglasPeucker(points[:maxIdx+1], epsilon)
	right := douglasPeucker(points[maxIdx:], epsilon)

	merged := make([]domain.GeoPoint, 0, len(left)+len(right)-1)
	merged = append(merged, left[:len(left)-1]...)
	return append(merged, right...)
}

// perpendicularDistance is the distance, in raw degrees, from p to the line
// through a and b.
func perpendicularDistance(p, a, b domain.GeoPoint) float64 {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat
	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lon-a.Lon, p.Lat-a.Lat)
	}
	num := math.Abs(dy*p.Lon - dx*p.Lat + b.Lon*a.Lat - b.Lat*a.Lon)
	return num / math.Hypot(dx, dy)
}
