package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/chaugan/intelmap/internal/adapters/http"
	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/core/terrain"
	"github.com/chaugan/intelmap/internal/core/usecases"
)

// --- Mock ports ---

type mockElevationProvider struct {
	elevFn func(p domain.GeoPoint) float64
}

func (m *mockElevationProvider) Elevations(ctx context.Context, points []domain.GeoPoint, concurrency int) ([]float64, error) {
	out := make([]float64, len(points))
	if m.elevFn != nil {
		for i, p := range points {
			out[i] = m.elevFn(p)
		}
	}
	return out, nil
}

type mockRoadRouter struct {
	routeFn func(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error)
}

func (m *mockRoadRouter) Route(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
	if m.routeFn != nil {
		return m.routeFn(ctx, waypoints)
	}
	return &domain.RoadRoute{Coordinates: waypoints, DistanceKm: 10, DurationMin: 12}, nil
}

func newTestApp(elev *mockElevationProvider, roads *mockRoadRouter) *fiber.App {
	if elev == nil {
		elev = &mockElevationProvider{}
	}
	if roads == nil {
		roads = &mockRoadRouter{}
	}

	deps := &handler.Dependencies{
		Terrain: usecases.NewTerrainService(
			terrain.NewBuilder(elev, 25, 25),
			terrain.NewPathfinder(35),
			elev, nil, nil,
		),
		Roads: usecases.NewRoadService(roads, nil, nil),
	}

	app := fiber.New()
	handler.SetupRoutes(app, deps)
	return app
}

func getJSON(t *testing.T, app *fiber.App, url string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(body, &parsed), "body was %s", body)
	return resp.StatusCode, parsed
}

// --- Tests ---

func TestTerrainRouteMissingParams(t *testing.T) {
	app := newTestApp(nil, nil)

	status, body := getJSON(t, app, "/route/terrain?from=18.5,69.0")
	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "required")
}

func TestTerrainRouteMalformedCoordinate(t *testing.T) {
	app := newTestApp(nil, nil)

	status, body := getJSON(t, app, "/route/terrain?from=69.0&to=18.6,69.0")
	assert.Equal(t, 400, status)
	assert.NotEmpty(t, body["error"])

	status, _ = getJSON(t, app, "/route/terrain?from=200.0,69.0&to=18.6,69.0")
	assert.Equal(t, 400, status, "out-of-range longitude must be rejected")
}

func TestTerrainRouteHappyPath(t *testing.T) {
	app := newTestApp(nil, nil)

	status, body := getJSON(t, app, "/route/terrain?from=18.50,69.00&to=18.60,69.00")
	require.Equal(t, 200, status)

	coords, ok := body["coordinates"].([]any)
	require.True(t, ok, "coordinates missing: %v", body)
	require.GreaterOrEqual(t, len(coords), 2)

	first := coords[0].([]any)
	assert.InDelta(t, 18.50, first[0].(float64), 1e-9, "lon comes first")
	assert.InDelta(t, 69.00, first[1].(float64), 1e-9)

	profile, ok := body["elevationProfile"].([]any)
	require.True(t, ok)
	assert.Equal(t, len(coords), len(profile))
	assert.Greater(t, body["distanceKm"].(float64), 0.0)
}

func TestTerrainRouteImpassable(t *testing.T) {
	elev := &mockElevationProvider{
		elevFn: func(p domain.GeoPoint) float64 {
			if p.Lat > 69.05 {
				return 1e6
			}
			return 0
		},
	}
	app := newTestApp(elev, nil)

	status, body := getJSON(t, app, "/route/terrain?from=18.50,69.00&to=18.50,69.10")
	assert.Equal(t, 404, status)
	assert.Equal(t, "no passable terrain route found", body["error"])
}

func TestRoadRouteHappyPath(t *testing.T) {
	app := newTestApp(nil, nil)

	status, body := getJSON(t, app, "/route/road?from=18.50,69.00&to=18.60,69.00&via=18.55,69.01")
	require.Equal(t, 200, status)
	assert.Equal(t, 10.0, body["distanceKm"])
	assert.Equal(t, 12.0, body["durationMin"])

	coords := body["coordinates"].([]any)
	assert.Len(t, coords, 3, "from, via, to")
}

func TestRoadRouteUpstreamFailure(t *testing.T) {
	roads := &mockRoadRouter{
		routeFn: func(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
			return nil, domain.ErrUpstream
		},
	}
	app := newTestApp(nil, roads)

	status, body := getJSON(t, app, "/route/road?from=18.50,69.00&to=18.60,69.00")
	assert.Equal(t, 502, status)
	assert.NotEmpty(t, body["error"])
}

func TestElevationProfileEndpoint(t *testing.T) {
	elev := &mockElevationProvider{
		elevFn: func(p domain.GeoPoint) float64 { return 100 * p.Lon },
	}
	app := newTestApp(elev, nil)

	status, body := getJSON(t, app, "/route/elevation-profile?coordinates=18.50,69.00;18.55,69.00;18.60,69.00")
	require.Equal(t, 200, status)

	points := body["points"].([]any)
	assert.Len(t, points, 3)
	assert.InDelta(t, 1860.0, body["maxElevation"].(float64), 1e-6)
	assert.InDelta(t, 1850.0, body["minElevation"].(float64), 1e-6)
	assert.InDelta(t, 10.0, body["totalClimb"].(float64), 1e-6)
}

func TestElevationProfileValidation(t *testing.T) {
	app := newTestApp(nil, nil)

	status, _ := getJSON(t, app, "/route/elevation-profile")
	assert.Equal(t, 400, status)

	status, _ = getJSON(t, app, "/route/elevation-profile?coordinates=18.50,69.00")
	assert.Equal(t, 400, status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(nil, nil)

	status, body := getJSON(t, app, "/health")
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
}
