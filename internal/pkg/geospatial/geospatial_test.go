package geospatial_test

import (
	"math"
	"testing"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/pkg/geospatial"
)

func TestDistanceKm(t *testing.T) {
	// Tromsø city centre to the airport, roughly 3.5 km.
	a := domain.GeoPoint{Lon: 18.9553, Lat: 69.6496}
	b := domain.GeoPoint{Lon: 18.9189, Lat: 69.6833}

	d := geospatial.DistanceKm(a, b)
	if d < 3.0 || d > 4.5 {
		t.Errorf("expected ~3.5-4 km, got %f", d)
	}

	if geospatial.DistanceKm(a, a) != 0 {
		t.Error("distance from a point to itself must be 0")
	}
	if math.Abs(geospatial.DistanceKm(a, b)-geospatial.DistanceKm(b, a)) > 1e-12 {
		t.Error("distance must be symmetric")
	}
}

func TestDistanceKmEquator(t *testing.T) {
	// One degree of longitude at the equator is ~111.19 km with R=6371.
	a := domain.GeoPoint{Lon: 0, Lat: 0}
	b := domain.GeoPoint{Lon: 1, Lat: 0}
	d := geospatial.DistanceKm(a, b)
	if math.Abs(d-111.19) > 0.1 {
		t.Errorf("expected ~111.19 km, got %f", d)
	}
}

func line(n int) []domain.GeoPoint {
	pts := make([]domain.GeoPoint, n)
	for i := range pts {
		pts[i] = domain.GeoPoint{Lon: 18.5 + 0.001*float64(i), Lat: 69.0 + 0.0005*float64(i)}
	}
	return pts
}

func TestSimplifyIdentityBelowBudget(t *testing.T) {
	pts := line(10)
	out := geospatial.Simplify(pts, 20)
	if len(out) != 10 {
		t.Fatalf("expected input returned unchanged, got %d points", len(out))
	}
}

func TestSimplifyReducesAndKeepsEndpoints(t *testing.T) {
	// A noisy zigzag so Douglas-Peucker has real work to do.
	pts := make([]domain.GeoPoint, 400)
	for i := range pts {
		jitter := 0.0002 * float64(i%5)
		pts[i] = domain.GeoPoint{Lon: 18.5 + 0.001*float64(i), Lat: 69.0 + jitter}
	}

	out := geospatial.Simplify(pts, 50)
	if len(out) < 2 {
		t.Fatalf("simplified to fewer than 2 points: %d", len(out))
	}
	// Epsilon search is approximate; allow slack above the budget but demand
	// a real reduction.
	if len(out) > 60 {
		t.Errorf("expected roughly <= 50 points, got %d", len(out))
	}
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Error("endpoints must be preserved unmodified")
	}
}

func TestResampleExactCount(t *testing.T) {
	pts := line(100)
	out := geospatial.Resample(pts, 10)
	if len(out) != 10 {
		t.Fatalf("expected exactly 10 points, got %d", len(out))
	}
	if out[0] != pts[0] || out[9] != pts[99] {
		t.Error("endpoints must equal the original endpoints exactly")
	}
}

func TestResampleIdentityBelowBudget(t *testing.T) {
	pts := line(5)
	out := geospatial.Resample(pts, 10)
	if len(out) != 5 {
		t.Fatalf("expected input returned unchanged, got %d points", len(out))
	}
}

func TestResampleEvenSpacing(t *testing.T) {
	pts := line(200)
	out := geospatial.Resample(pts, 20)

	var gaps []float64
	for i := 1; i < len(out); i++ {
		gaps = append(gaps, geospatial.DistanceKm(out[i-1], out[i]))
	}
	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	for i, g := range gaps {
		if math.Abs(g-mean) > mean*0.05 {
			t.Errorf("gap %d deviates from mean: %f vs %f", i, g, mean)
		}
	}
}

func TestSmooth(t *testing.T) {
	pts := []domain.GeoPoint{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 3},
		{Lon: 2, Lat: 0},
	}
	out := geospatial.Smooth(pts)

	if out[0] != pts[0] || out[2] != pts[2] {
		t.Error("endpoints must be preserved")
	}
	if math.Abs(out[1].Lat-1.0) > 1e-12 {
		t.Errorf("interior point should average to lat 1.0, got %f", out[1].Lat)
	}

	// Length <= 2 is returned unchanged.
	two := pts[:2]
	if got := geospatial.Smooth(two); len(got) != 2 || got[0] != two[0] {
		t.Error("short sequences must pass through unchanged")
	}
}
