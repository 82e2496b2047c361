package http

import "github.com/gofiber/fiber/v2"

// newError builds the JSON error response. The wire shape is a single
// "error" field; clients switch on the status code.
func newError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// errBadRequest returns a 400 error for missing or malformed parameters.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, msg)
}

// errNotFound returns a 404 error; used when no passable route exists.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, msg)
}

// errBadGateway returns a 502 error for upstream or internal failures.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, msg)
}
