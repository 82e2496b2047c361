package http

import (
	"github.com/chaugan/intelmap/internal/core/ports"
	"github.com/chaugan/intelmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Terrain *usecases.TerrainService
	Roads   *usecases.RoadService
	Cache   ports.CacheService
}
