package middleware

import (
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// TenantMiddleware resolves the calling agent from the JWT subject. It must
// run after JWTProtected.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: token has no valid subject",
			})
		}
		tenant.SetTenantID(c, id)
		return c.Next()
	}
}
