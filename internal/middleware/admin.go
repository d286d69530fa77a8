package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const adminCacheTTL = 5 * time.Minute

// AdminRequired grants admin access from, in order:
// 1. X-Admin-Token header
// 2. JWT role claim
// 3. Config-based admin emails/IDs
// 4. Stored profile role
//
// When 2 or 3 grants access the stored role is brought in line. Only
// positive decisions are cached.
func AdminRequired(profiles repository.ProfileRepository, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)
	granted := cache.New(adminCacheTTL, 10*time.Minute)

	return func(c *fiber.Ctx) error {
		// Check admin token header
		if validAdminToken(cfg, c.Get("X-Admin-Token")) {
			return c.Next()
		}

		claims, ok := tenant.Claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		sub, _ := claims["sub"].(string)
		if sub != "" {
			if _, hit := granted.Get(sub); hit {
				return c.Next()
			}
		}

		role, _ := claims["role"].(string)
		email, _ := claims["email"].(string)
		userID, idErr := uuid.Parse(sub)

		if role == "admin" || contains(adminEmails, strings.ToLower(email)) || contains(adminUserIDs, sub) {
			if idErr == nil {
				if err := profiles.PromoteToAdmin(c.UserContext(), userID); err != nil {
					slog.Warn("admin role write-back failed", "tenant_id", sub, "error", err)
				}
			}
			if sub != "" {
				granted.SetDefault(sub, true)
			}
			return c.Next()
		}

		if idErr == nil {
			if p, err := profiles.GetByID(c.UserContext(), userID); err == nil && p.Role == "admin" {
				granted.SetDefault(sub, true)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func validAdminToken(cfg *config.Config, provided string) bool {
	if cfg.AdminToken == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.AdminToken)) == 1
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
