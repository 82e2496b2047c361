package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	valkeygo "github.com/valkey-io/valkey-go"

	"github.com/chaugan/intelmap/internal/adapters/memcache"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler checks cache connectivity. The upstream elevation and
// road-graph services are probed lazily per request, not here: the service
// can start and serve cached routes while an upstream is down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		if deps.Cache != nil {
			// A miss is the expected answer for a probe key; only transport
			// failures matter here.
			if _, err := deps.Cache.Get(ctx, "__health_check__"); err != nil && !isMiss(err) {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status := fiber.StatusOK
		state := "ready"
		if !allOK {
			status = fiber.StatusServiceUnavailable
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status": state,
			"checks": checks,
		})
	}
}

// isMiss reports whether a cache error is an ordinary miss rather than a
// transport failure, for either cache backend.
func isMiss(err error) bool {
	return errors.Is(err, memcache.ErrMiss) || valkeygo.IsValkeyNil(err)
}
