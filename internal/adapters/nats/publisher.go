// Package natsadapter publishes routing events over NATS JetStream. The
// collaborative map layer subscribes to computed routes so finished
// geometries can be shared into live map sessions.
package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/chaugan/intelmap/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// routeComputedEvent is the wire shape for map.routes.computed.* subjects.
type routeComputedEvent struct {
	RouteType   string            `json:"route_type"`
	Coordinates []domain.GeoPoint `json:"coordinates"`
	DistanceKm  float64           `json:"distance_km"`
	ComputedAt  time.Time         `json:"computed_at"`
}

// NewPublisher connects to NATS and ensures the routing stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "MAP_ROUTES",
		Subjects:  []string{"map.routes.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRouteComputed emits a computed route to interested map sessions.
func (p *Publisher) PublishRouteComputed(ctx context.Context, routeType string, coordinates []domain.GeoPoint, distanceKm float64) error {
	data, err := json.Marshal(routeComputedEvent{
		RouteType:   routeType,
		Coordinates: coordinates,
		DistanceKm:  distanceKm,
		ComputedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("map.routes.computed."+routeType, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
