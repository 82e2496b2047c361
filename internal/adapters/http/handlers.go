package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chaugan/intelmap/internal/core/domain"
)

// parsePoint parses a "lon,lat" query value.
func parsePoint(s string) (domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("expected lon,lat, got %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("invalid longitude %q", parts[0])
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("invalid latitude %q", parts[1])
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return domain.GeoPoint{}, fmt.Errorf("coordinate out of range: %q", s)
	}
	return domain.GeoPoint{Lon: lon, Lat: lat}, nil
}

// parsePointList parses a semicolon-separated list of "lon,lat" pairs.
func parsePointList(s string) ([]domain.GeoPoint, error) {
	var points []domain.GeoPoint
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := parsePoint(part)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// waypointsFromQuery assembles [from, via..., to] from the request.
func waypointsFromQuery(c *fiber.Ctx) ([]domain.GeoPoint, error) {
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return nil, fmt.Errorf("from and to are required")
	}
	from, err := parsePoint(fromStr)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := parsePoint(toStr)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	waypoints := []domain.GeoPoint{from}
	if viaStr := c.Query("via"); viaStr != "" {
		via, err := parsePointList(viaStr)
		if err != nil {
			return nil, fmt.Errorf("via: %w", err)
		}
		waypoints = append(waypoints, via...)
	}
	return append(waypoints, to), nil
}

// coordPairs renders points as [[lon,lat],...] for the wire.
func coordPairs(points []domain.GeoPoint) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p.Lon, p.Lat}
	}
	return out
}

// routeError maps domain errors onto the HTTP taxonomy: 400 for validation,
// 404 for no passable route, 502 for everything else.
func routeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNoRoute):
		return errNotFound(c, "no passable terrain route found")
	default:
		return errBadGateway(c, err.Error())
	}
}

// RoadRouteHandler computes a road-following route via the external
// road-graph service.
func RoadRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		waypoints, err := waypointsFromQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		route, err := deps.Roads.PlanRoute(c.UserContext(), waypoints)
		if err != nil {
			return routeError(c, err)
		}

		return c.JSON(fiber.Map{
			"coordinates": coordPairs(route.Coordinates),
			"distanceKm":  route.DistanceKm,
			"durationMin": route.DurationMin,
		})
	}
}

// TerrainRouteHandler computes a terrain-aware cross-country route.
func TerrainRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		waypoints, err := waypointsFromQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		route, err := deps.Terrain.PlanRoute(c.UserContext(), waypoints)
		if err != nil {
			return routeError(c, err)
		}

		return c.JSON(fiber.Map{
			"coordinates":      coordPairs(route.Coordinates),
			"distanceKm":       route.DistanceKm,
			"elevationProfile": route.ElevationProfile,
		})
	}
}

// ElevationProfileHandler resolves an elevation profile for an arbitrary
// coordinate sequence.
func ElevationProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coordsStr := c.Query("coordinates")
		if coordsStr == "" {
			return errBadRequest(c, "coordinates is required")
		}
		coords, err := parsePointList(coordsStr)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		profile, err := deps.Terrain.ElevationProfile(c.UserContext(), coords)
		if err != nil {
			return routeError(c, err)
		}

		return c.JSON(fiber.Map{
			"points":       profile.Points,
			"maxElevation": profile.MaxElevation,
			"minElevation": profile.MinElevation,
			"totalClimb":   profile.TotalClimb,
		})
	}
}
