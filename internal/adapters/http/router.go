package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/chaugan/intelmap/internal/pkg/metrics"
)

// routeTimeout bounds a single route computation end to end. Terrain requests
// do a full grid of elevation lookups per segment, so this is generous.
const routeTimeout = 30 * time.Second

// SetupRoutes registers all routes and middleware.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 60 requests per minute per IP. Route computation is
	// expensive; the cache absorbs identical retries.
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		},
	}))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	// Routing API
	route := app.Group("/route")
	route.Get("/road", timeout.NewWithContext(RoadRouteHandler(deps), routeTimeout))
	route.Get("/terrain", timeout.NewWithContext(TerrainRouteHandler(deps), routeTimeout))
	route.Get("/elevation-profile", timeout.NewWithContext(ElevationProfileHandler(deps), routeTimeout))
}
