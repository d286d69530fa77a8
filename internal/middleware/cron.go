package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// CronSecret guards job endpoints called by the external scheduler. The
// secret may arrive as X-Cron-Secret or as a bearer token.
func CronSecret(cfg *config.Config) fiber.Handler {
	secret := []byte(cfg.CronSecret)

	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			slog.Warn("job endpoint called but CRON_SECRET is not set", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		provided := c.Get("X-Cron-Secret")
		if provided == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				provided = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), secret) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
