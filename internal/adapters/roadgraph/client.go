// Package roadgraph implements ports.RoadGraphRouter against an
// OSRM-compatible routing service. All shortest-path computation is
// delegated; this client only shapes the request and thins the response
// geometry.
package roadgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/pkg/geospatial"
)

// maxGeometryPoints is the display budget for road geometry; anything larger
// is simplified before being returned.
const maxGeometryPoints = 150

// Client delegates road routing to an external OSRM-compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a road-graph client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// Route computes a road-following route through the ordered waypoints.
func (c *Client) Route(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: at least two waypoints required", domain.ErrValidation)
	}

	coords := make([]string, len(waypoints))
	for i, p := range waypoints {
		coords[i] = fmt.Sprintf("%f,%f", p.Lon, p.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson",
		c.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("%w: no road route (code %q)", domain.ErrNoRoute, parsed.Code)
	}

	best := parsed.Routes[0]
	points := make([]domain.GeoPoint, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		points = append(points, domain.GeoPoint{Lon: c[0], Lat: c[1]})
	}

	if len(points) > maxGeometryPoints {
		points = geospatial.Simplify(points, maxGeometryPoints)
	}

	return &domain.RoadRoute{
		Coordinates: points,
		DistanceKm:  best.Distance / 1000,
		DurationMin: best.Duration / 60,
	}, nil
}
