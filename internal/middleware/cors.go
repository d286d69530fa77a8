package middleware

import (
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS admits the marketplace web clients. X-Request-ID is exposed so a
// client can quote it when a payment fails.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:     "GET, POST, PUT, OPTIONS",
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: false,
	})
}
