package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaugan/intelmap/internal/core/domain"
	"github.com/chaugan/intelmap/internal/core/ports"
	"github.com/chaugan/intelmap/internal/pkg/metrics"
)

// RoadService delegates road-following routes to the external road-graph
// service. There is no local search; this service only validates, caches,
// and publishes.
type RoadService struct {
	router ports.RoadGraphRouter
	cache  ports.CacheService
	events ports.EventPublisher
}

// NewRoadService creates a new RoadService. cache and events may be nil.
func NewRoadService(router ports.RoadGraphRouter, cache ports.CacheService, events ports.EventPublisher) *RoadService {
	return &RoadService{router: router, cache: cache, events: events}
}

// PlanRoute computes a road route through the ordered waypoints.
func (s *RoadService) PlanRoute(ctx context.Context, waypoints []domain.GeoPoint) (*domain.RoadRoute, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: at least two waypoints required", domain.ErrValidation)
	}

	cacheKey := routeCacheKey(domain.RouteTypeRoad, waypoints)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var route domain.RoadRoute
			if err := json.Unmarshal(data, &route); err == nil {
				metrics.CacheHits.WithLabelValues("road_route").Inc()
				return &route, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("road_route").Inc()
	}

	start := time.Now()
	route, err := s.router.Route(ctx, waypoints)
	if err != nil {
		metrics.RoutesComputed.WithLabelValues(domain.RouteTypeRoad, "error").Inc()
		return nil, err
	}
	metrics.RoutesComputed.WithLabelValues(domain.RouteTypeRoad, "ok").Inc()
	metrics.RouteComputeDuration.WithLabelValues(domain.RouteTypeRoad).Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, routeTTLSeconds)
		}
	}
	if s.events != nil {
		if err := s.events.PublishRouteComputed(ctx, domain.RouteTypeRoad, route.Coordinates, route.DistanceKm); err != nil {
			slog.WarnContext(ctx, "publish route event failed", "error", err)
		}
	}

	return route, nil
}
