package elevation_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaugan/intelmap/internal/adapters/elevation"
	"github.com/chaugan/intelmap/internal/core/domain"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestElevationsIndexAligned(t *testing.T) {
	// Elevation encodes the requested latitude so the test can verify that
	// results land at the right indices regardless of completion order.
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		loc := r.URL.Query().Get("locations")
		lat := strings.Split(loc, ",")[0]
		var latF float64
		fmt.Sscanf(lat, "%f", &latF)
		fmt.Fprintf(w, `{"results":[{"elevation":%f}]}`, latF*10)
	})

	client := elevation.NewClient(srv.URL, 5*time.Second)
	points := []domain.GeoPoint{
		{Lon: 18.5, Lat: 1},
		{Lon: 18.5, Lat: 2},
		{Lon: 18.5, Lat: 3},
		{Lon: 18.5, Lat: 4},
	}

	elevs, err := client.Elevations(context.Background(), points, 2)
	require.NoError(t, err)
	require.Len(t, elevs, 4)
	for i, e := range elevs {
		assert.InDelta(t, float64(i+1)*10, e, 1e-6, "index %d", i)
	}
}

func TestElevationsSoftFailToZero(t *testing.T) {
	var n atomic.Int64
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1)%2 == 0 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"results":[{"elevation":120.5}]}`)
	})

	client := elevation.NewClient(srv.URL, 5*time.Second)
	points := make([]domain.GeoPoint, 6)

	elevs, err := client.Elevations(context.Background(), points, 1)
	require.NoError(t, err, "per-point failures must not fail the batch")
	require.Len(t, elevs, 6)
	for i, e := range elevs {
		if i%2 == 0 {
			assert.Equal(t, 120.5, e)
		} else {
			assert.Equal(t, 0.0, e, "failed lookup must degrade to 0")
		}
	}
}

func TestElevationsNoDataIsZero(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"elevation":null}]}`)
	})

	client := elevation.NewClient(srv.URL, 5*time.Second)
	elevs, err := client.Elevations(context.Background(), []domain.GeoPoint{{Lon: 0, Lat: 0}}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, elevs)
}

func TestElevationsConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		fmt.Fprint(w, `{"results":[{"elevation":1}]}`)
	})

	client := elevation.NewClient(srv.URL, 5*time.Second)
	points := make([]domain.GeoPoint, 20)

	_, err := client.Elevations(context.Background(), points, 5)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 5, "fan-out must stay within the concurrency limit")
}

func TestElevationsCancelled(t *testing.T) {
	srv := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, `{"results":[{"elevation":1}]}`)
	})

	client := elevation.NewClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Elevations(ctx, make([]domain.GeoPoint, 10), 2)
	require.Error(t, err)
}
