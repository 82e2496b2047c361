package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/chaugan/intelmap/internal/adapters/elevation"
	handler "github.com/chaugan/intelmap/internal/adapters/http"
	"github.com/chaugan/intelmap/internal/adapters/memcache"
	natsadapter "github.com/chaugan/intelmap/internal/adapters/nats"
	"github.com/chaugan/intelmap/internal/adapters/roadgraph"
	"github.com/chaugan/intelmap/internal/adapters/valkey"
	"github.com/chaugan/intelmap/internal/core/ports"
	"github.com/chaugan/intelmap/internal/core/terrain"
	"github.com/chaugan/intelmap/internal/core/usecases"
	"github.com/chaugan/intelmap/internal/pkg/config"
	"github.com/chaugan/intelmap/internal/pkg/logging"
	"github.com/chaugan/intelmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("intelmap-routing")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Route cache
	var cache ports.CacheService
	switch cfg.Cache.Backend {
	case "valkey":
		vk, err := valkey.New(cfg.Cache.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, running without route cache", "error", err)
		} else {
			defer vk.Close()
			cache = vk
		}
	default:
		cache = memcache.New()
	}

	// NATS
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, route events disabled", "error", err)
		} else {
			defer nc.Close()
			events = nc
		}
	}

	// Upstream clients
	elevClient := elevation.NewClient(cfg.Elevation.BaseURL,
		time.Duration(cfg.Elevation.TimeoutSeconds)*time.Second)
	roadClient := roadgraph.NewClient(cfg.RoadGraph.BaseURL,
		time.Duration(cfg.RoadGraph.TimeoutSeconds)*time.Second)

	// Terrain engine
	gridBuilder := terrain.NewBuilder(elevClient, cfg.Terrain.GridSize, cfg.Elevation.GridConcurrency)
	pathfinder := terrain.NewPathfinder(cfg.Terrain.MaxSlopeDeg)

	// Use cases
	terrainSvc := usecases.NewTerrainService(gridBuilder, pathfinder, elevClient, cache, events)
	roadSvc := usecases.NewRoadService(roadClient, cache, events)

	deps := &handler.Dependencies{
		Terrain: terrainSvc,
		Roads:   roadSvc,
		Cache:   cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		AppName:      "IntelMap Routing API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	handler.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("routing API starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
