package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Health reports service status and database reachability
func (h *Handler) Health(c *fiber.Ctx) error {
	status := "ok"
	database := "connected"

	if h.db == nil {
		status = "degraded"
		database = "unavailable"
	} else {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check: database ping failed", zap.Error(err))
			status = "degraded"
			database = "unreachable"
		}
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
		"service":   "grocery-assistant",
	})
}
