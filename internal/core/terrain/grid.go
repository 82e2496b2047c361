package terrain

import (
	"context"
	"fmt"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/core/ports"
	"github.com/chaugan/intelmap/internal/pkg/geospatial"
)

const (
	// boundsMargin expands the start/end bounding box by 20% per axis so the
	// search has room to detour around obstacles near the endpoints.
	boundsMargin = 0.2

	// minSpanDeg keeps the box from degenerating when start and end share a
	// longitude or latitude.
	minSpanDeg = 0.1
)

// Grid is an immutable elevation-sampling grid covering the bounding box of
// one start/end pair. Cells are indexed row*W+col.
type Grid struct {
	W, H       int
	Bounds     domain.Bounds
	Points     []domain.GeoPoint
	Elevations []float64
}

// Index returns the flat cell index for a row/col pair.
func (g *Grid) Index(row, col int) int { return row*g.W + col }

// CellPath maps a sequence of cell indices to their geographic coordinates.
func (g *Grid) CellPath(indices []int) []domain.GeoPoint {
	pts := make([]domain.GeoPoint, len(indices))
	for i, idx := range indices {
		pts[i] = g.Points[idx]
	}
	return pts
}

// Builder constructs elevation grids for start/end pairs. Each call issues a
// fresh batch of elevation lookups; grids are never shared between segments
// or requests.
type Builder struct {
	elevation   ports.ElevationProvider
	size        int
	concurrency int
}

// NewBuilder creates a grid builder. size is the grid dimension per axis
// and concurrency bounds the elevation lookup fan-out.
func NewBuilder(elevation ports.ElevationProvider, size, concurrency int) *Builder {
	if size < 2 {
		size = 25
	}
	if concurrency <= 0 {
		concurrency = 25
	}
	return &Builder{elevation: elevation, size: size, concurrency: concurrency}
}

// Build samples a size×size grid over the expanded bounding box of start and
// end, resolves elevations for every cell, and returns the grid together with
// the cell indices nearest to the true start and end coordinates. The search
// operates only on grid cells, never on the exact requested coordinates.
func (b *Builder) Build(ctx context.Context, start, end domain.GeoPoint) (*Grid, int, int, error) {
	bounds := expandBounds(start, end)

	w, h := b.size, b.size
	points := make([]domain.GeoPoint, w*h)
	for row := 0; row < h; row++ {
		lat := bounds.MinLat + (bounds.MaxLat-bounds.MinLat)*float64(row)/float64(h-1)
		for col := 0; col < w; col++ {
			lon := bounds.MinLon + (bounds.MaxLon-bounds.MinLon)*float64(col)/float64(w-1)
			points[row*w+col] = domain.GeoPoint{Lon: lon, Lat: lat}
		}
	}

	elevations, err := b.elevation.Elevations(ctx, points, b.concurrency)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("resolve grid elevations: %w", err)
	}

	grid := &Grid{W: w, H: h, Bounds: bounds, Points: points, Elevations: elevations}
	return grid, nearestCell(grid, start), nearestCell(grid, end), nil
}

func expandBounds(a, b domain.GeoPoint) domain.Bounds {
	minLon, maxLon := minMax(a.Lon, b.Lon)
	minLat, maxLat := minMax(a.Lat, b.Lat)

	lonPad := (maxLon - minLon) * boundsMargin
	latPad := (maxLat - minLat) * boundsMargin
	minLon -= lonPad
	maxLon += lonPad
	minLat -= latPad
	maxLat += latPad

	if span := maxLon - minLon; span < minSpanDeg {
		mid := (minLon + maxLon) / 2
		minLon = mid - minSpanDeg/2
		maxLon = mid + minSpanDeg/2
	}
	if span := maxLat - minLat; span < minSpanDeg {
		mid := (minLat + maxLat) / 2
		minLat = mid - minSpanDeg/2
		maxLat = mid + minSpanDeg/2
	}

	return domain.Bounds{MinLon: minLon, MaxLon: maxLon, MinLat: minLat, MaxLat: maxLat}
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// nearestCell snaps a continuous coordinate to the grid cell of minimum
// great-circle distance.
func nearestCell(g *Grid, p domain.GeoPoint) int {
	best := 0
	bestDist := geospatial.DistanceKm(p, g.Points[0])
	for i := 1; i < len(g.Points); i++ {
		if d := geospatial.DistanceKm(p, g.Points[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
