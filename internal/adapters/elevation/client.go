// Package elevation implements ports.ElevationProvider against an
// opentopodata-compatible point-elevation service.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/pkg/metrics"
)

// Client queries the upstream service one point at a time, bounding the
// concurrent fan-out per batch so the provider is never overwhelmed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an elevation client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// lookupResponse mirrors the provider's JSON shape.
type lookupResponse struct {
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations resolves elevations for all points, writing results into an
// index-aligned output slice so input order is preserved regardless of
// completion order. At most concurrency lookups are in flight at once.
//
// A failed individual lookup (network error, bad status, "no data") degrades
// to elevation 0 rather than failing the batch; the failure is counted and
// logged. The returned error is non-nil only when ctx is cancelled.
func (c *Client) Elevations(ctx context.Context, points []domain.GeoPoint, concurrency int) ([]float64, error) {
	if concurrency <= 0 {
		concurrency = 10
	}

	out := make([]float64, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			elev, err := c.lookup(gctx, p)
			if err != nil {
				metrics.ElevationLookupFailures.Inc()
				slog.WarnContext(gctx, "elevation lookup soft-failed to 0",
					"lon", p.Lon, "lat", p.Lat, "error", err)
				out[i] = 0
				return nil
			}
			out[i] = elev
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Lookups interrupted by cancellation soft-fail like any other error, so
	// report the cancellation itself instead of a grid of zeros.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// lookup fetches the elevation in meters for a single point.
func (c *Client) lookup(ctx context.Context, p domain.GeoPoint) (float64, error) {
	metrics.ElevationLookups.Inc()

	url := fmt.Sprintf("%s/v1/lookup?locations=%f,%f", c.baseURL, p.Lat, p.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Results) == 0 || parsed.Results[0].Elevation == nil {
		return 0, fmt.Errorf("no elevation data for %f,%f", p.Lat, p.Lon)
	}

	return *parsed.Results[0].Elevation, nil
}
