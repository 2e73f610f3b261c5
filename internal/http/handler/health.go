package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"portal/internal/database"
)

// HealthCheck reports the database connection state and pings it.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]any
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(db *database.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		state := db.State()
		if state != database.StateConnected {
			msg := "database " + string(state)
			if err := db.LastError(); err != nil {
				msg += ": last attempt failed"
			}
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", msg)
		}
		if err := db.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"database": fiber.Map{"name": db.Name(), "state": state},
		})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
