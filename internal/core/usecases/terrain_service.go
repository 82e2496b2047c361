package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/core/ports"
	"github.com/chaugan/intelmap/internal/core/terrain"
	"github.com/chaugan/intelmap/internal/pkg/geospatial"
	"github.com/chaugan/intelmap/internal/pkg/metrics"
)

const (
	// displayPoints is the fixed budget the final path is resampled to.
	displayPoints = 80

	// profileConcurrency bounds elevation lookups when rebuilding the
	// profile over the resampled path.
	profileConcurrency = 10

	// routeTTLSeconds is how long a computed route stays cached. Terrain
	// does not change, but upstream elevation data and service behavior can,
	// so 15 minutes.
	routeTTLSeconds = 900

	// maxProfileCoordinates caps the standalone elevation-profile endpoint.
	maxProfileCoordinates = 400
)

// TerrainService computes cross-country routes over elevation-sampled grids.
// Each consecutive waypoint pair gets its own grid and its own search; grids
// are never reused across segments or requests.
type TerrainService struct {
	grids      *terrain.Builder
	pathfinder *terrain.Pathfinder
	elevation  ports.ElevationProvider
	cache      ports.CacheService
	events     ports.EventPublisher
}

// NewTerrainService creates a new TerrainService. cache and events may be nil.
func NewTerrainService(
	grids *terrain.Builder,
	pathfinder *terrain.Pathfinder,
	elevation ports.ElevationProvider,
	cache ports.CacheService,
	events ports.EventPublisher,
) *TerrainService {
	return &TerrainService{
		grids:      grids,
		pathfinder: pathfinder,
		elevation:  elevation,
		cache:      cache,
		events:     events,
	}
}

// PlanRoute computes a terrain route through the ordered waypoints (start,
// zero or more via points, end). If any segment is impassable the whole
// request fails with domain.ErrNoRoute; partial results are never returned.
func (s *TerrainService) PlanRoute(ctx context.Context, waypoints []domain.GeoPoint) (*domain.TerrainRoute, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: at least two waypoints required", domain.ErrValidation)
	}

	cacheKey := routeCacheKey(domain.RouteTypeTerrain, waypoints)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var route domain.TerrainRoute
			if err := json.Unmarshal(data, &route); err == nil {
				metrics.CacheHits.WithLabelValues("terrain_route").Inc()
				return &route, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("terrain_route").Inc()
	}

	start := time.Now()
	route, err := s.computeRoute(ctx, waypoints)
	if err != nil {
		metrics.RoutesComputed.WithLabelValues(domain.RouteTypeTerrain, "error").Inc()
		return nil, err
	}
	metrics.RoutesComputed.WithLabelValues(domain.RouteTypeTerrain, "ok").Inc()
	metrics.RouteComputeDuration.WithLabelValues(domain.RouteTypeTerrain).Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, routeTTLSeconds)
		}
	}
	if s.events != nil {
		if err := s.events.PublishRouteComputed(ctx, domain.RouteTypeTerrain, route.Coordinates, route.DistanceKm); err != nil {
			slog.WarnContext(ctx, "publish route event failed", "error", err)
		}
	}

	return route, nil
}

func (s *TerrainService) computeRoute(ctx context.Context, waypoints []domain.GeoPoint) (*domain.TerrainRoute, error) {
	var full []domain.GeoPoint
	for i := 0; i < len(waypoints)-1; i++ {
		seg, err := s.routeSegment(ctx, waypoints[i], waypoints[i+1])
		if err != nil {
			return nil, err
		}
		// The first point of every segment after the first duplicates the
		// previous segment's last point.
		if i > 0 {
			seg = seg[1:]
		}
		full = append(full, seg...)
	}

	full = geospatial.Resample(full, displayPoints)

	elevations, err := s.elevation.Elevations(ctx, full, profileConcurrency)
	if err != nil {
		return nil, fmt.Errorf("resolve profile elevations: %w", err)
	}

	profile := make([]domain.ElevationProfilePoint, len(full))
	var distanceKm float64
	for i, p := range full {
		if i > 0 {
			distanceKm += geospatial.DistanceKm(full[i-1], p)
		}
		profile[i] = domain.ElevationProfilePoint{
			Lon:        p.Lon,
			Lat:        p.Lat,
			Elevation:  elevations[i],
			DistanceKm: distanceKm,
		}
	}

	return &domain.TerrainRoute{
		Coordinates:      full,
		DistanceKm:       distanceKm,
		ElevationProfile: profile,
	}, nil
}

// routeSegment solves one waypoint pair on a fresh grid and post-processes
// the cell path: snap the endpoints to the true coordinates, then smooth
// twice for display.
func (s *TerrainService) routeSegment(ctx context.Context, from, to domain.GeoPoint) ([]domain.GeoPoint, error) {
	grid, startIdx, endIdx, err := s.grids.Build(ctx, from, to)
	if err != nil {
		return nil, err
	}

	searchStart := time.Now()
	cellPath, err := s.pathfinder.Search(ctx, grid, startIdx, endIdx)
	metrics.TerrainSearchDuration.Observe(time.Since(searchStart).Seconds())
	if err != nil {
		if errors.Is(err, terrain.ErrUnreachable) {
			return nil, domain.ErrNoRoute
		}
		return nil, err
	}

	points := grid.CellPath(cellPath)
	if len(points) < 2 {
		// Start and end snapped to the same cell.
		return []domain.GeoPoint{from, to}, nil
	}
	points[0] = from
	points[len(points)-1] = to

	points = geospatial.Smooth(points)
	points = geospatial.Smooth(points)
	return points, nil
}

// ElevationProfile resolves elevations along an arbitrary coordinate
// sequence and summarises it.
func (s *TerrainService) ElevationProfile(ctx context.Context, coordinates []domain.GeoPoint) (*domain.ElevationProfile, error) {
	if len(coordinates) < 2 {
		return nil, fmt.Errorf("%w: at least two coordinates required", domain.ErrValidation)
	}
	if len(coordinates) > maxProfileCoordinates {
		return nil, fmt.Errorf("%w: at most %d coordinates", domain.ErrValidation, maxProfileCoordinates)
	}

	elevations, err := s.elevation.Elevations(ctx, coordinates, profileConcurrency)
	if err != nil {
		return nil, fmt.Errorf("resolve elevations: %w", err)
	}

	profile := &domain.ElevationProfile{
		Points:       make([]domain.ElevationProfilePoint, len(coordinates)),
		MaxElevation: elevations[0],
		MinElevation: elevations[0],
	}
	var distanceKm float64
	for i, p := range coordinates {
		if i > 0 {
			distanceKm += geospatial.DistanceKm(coordinates[i-1], p)
			if climb := elevations[i] - elevations[i-1]; climb > 0 {
				profile.TotalClimb += climb
			}
		}
		if elevations[i] > profile.MaxElevation {
			profile.MaxElevation = elevations[i]
		}
		if elevations[i] < profile.MinElevation {
			profile.MinElevation = elevations[i]
		}
		profile.Points[i] = domain.ElevationProfilePoint{
			Lon:        p.Lon,
			Lat:        p.Lat,
			Elevation:  elevations[i],
			DistanceKm: distanceKm,
		}
	}

	return profile, nil
}

// routeCacheKey builds a canonical cache key from the route type and the
// waypoint sequence.
func routeCacheKey(routeType string, waypoints []domain.GeoPoint) string {
	var sb strings.Builder
	sb.WriteString("route:")
	sb.WriteString(routeType)
	for _, p := range waypoints {
		fmt.Fprintf(&sb, ":%.6f,%.6f", p.Lon, p.Lat)
	}
	return sb.String()
}
