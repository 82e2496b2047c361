package ports

import (
	"context"

	"github.com/chaugan/intelmap/internal/core/domain"
)

// ElevationProvider resolves elevations for a batch of points against an
// external point-elevation service. Results are index-aligned with the input.
// Individual lookup failures degrade to elevation 0 rather than failing the
// batch; the returned error is non-nil only when the context is cancelled.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []domain.GeoPoint, concurrency int) ([]float64, error)
}

// RoadGraphRouter delegates road-following route computation to an external
// routing service.
type RoadGraphRouter interface {
	Route(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error)
}

// CacheService provides read-through caching with per-entry TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker. The
// collaborative map layer subscribes to computed routes so it can share them
// between sessions.
type EventPublisher interface {
	PublishRouteComputed(ctx context.Context, routeType string, coordinates []domain.GeoPoint, distanceKm float64) error
}
