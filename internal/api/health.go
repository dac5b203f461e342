package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Health builds the /health handler from the configured dependency checks.
// Any failing check flips the overall status to unhealthy and 503.
func Health(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		statuses := fiber.Map{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				statuses[name] = err.Error()
				healthy = false
			} else {
				statuses[name] = "ok"
			}
		}

		status := "healthy"
		httpStatus := fiber.StatusOK
		if !healthy {
			status = "unhealthy"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status": status,
			"checks": statuses,
		})
	}
}
