package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/core/usecases"
)

// --- Mock RoadGraphRouter ---

type mockRoadRouter struct {
	mu      sync.Mutex
	calls   int
	routeFn func(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error)
}

func (m *mockRoadRouter) Route(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.routeFn != nil {
		return m.routeFn(ctx, waypoints)
	}
	return &domain.RoadRoute{
		Coordinates: waypoints,
		DistanceKm:  12.5,
		DurationMin: 15,
	}, nil
}

func (m *mockRoadRouter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Tests ---

func TestRoadPlanRoute(t *testing.T) {
	router := &mockRoadRouter{}
	svc := usecases.NewRoadService(router, nil, nil)

	route, err := svc.PlanRoute(context.Background(), []domain.GeoPoint{
		{Lon: 18.5, Lat: 69.0}, {Lon: 18.6, Lat: 69.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.DistanceKm != 12.5 || route.DurationMin != 15 {
		t.Errorf("unexpected route: %+v", route)
	}
}

func TestRoadPlanRouteValidation(t *testing.T) {
	svc := usecases.NewRoadService(&mockRoadRouter{}, nil, nil)

	_, err := svc.PlanRoute(context.Background(), nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRoadPlanRouteCached(t *testing.T) {
	router := &mockRoadRouter{}
	cache := newMockCache()
	svc := usecases.NewRoadService(router, cache, nil)

	waypoints := []domain.GeoPoint{{Lon: 18.5, Lat: 69.0}, {Lon: 18.6, Lat: 69.0}}

	if _, err := svc.PlanRoute(context.Background(), waypoints); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.PlanRoute(context.Background(), waypoints); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if router.callCount() != 1 {
		t.Errorf("expected the upstream router called once, got %d", router.callCount())
	}
}

func TestRoadPlanRouteUpstreamError(t *testing.T) {
	router := &mockRoadRouter{
		routeFn: func(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
			return nil, domain.ErrUpstream
		},
	}
	svc := usecases.NewRoadService(router, nil, nil)

	_, err := svc.PlanRoute(context.Background(), []domain.GeoPoint{
		{Lon: 18.5, Lat: 69.0}, {Lon: 18.6, Lat: 69.0},
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
