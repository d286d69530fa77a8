package tenant

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localTenantID = "tenant_id"

var (
	ErrNoToken     = errors.New("invalid token in context")
	ErrMismatch    = errors.New("user id does not match the authenticated agent")
	ErrInvalidUser = errors.New("invalid user id")
)

// Claims returns the verified JWT claims placed in locals by the JWT middleware.
func Claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserID extracts the agent UUID from the sub claim.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := Claims(c)
	if !ok {
		return uuid.Nil, ErrNoToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetTenantID stores the resolved agent for downstream handlers.
func SetTenantID(c *fiber.Ctx, id uuid.UUID) {
	c.Locals(localTenantID, id)
}

// GetTenantID returns the agent resolved by the tenant middleware, falling
// back to the token subject.
func GetTenantID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(localTenantID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return GetUserID(c)
}

// Resolve returns the authenticated agent. A userId supplied in the body is
// accepted only when it names the same agent.
func Resolve(c *fiber.Ctx, claimed string) (uuid.UUID, error) {
	id, err := GetTenantID(c)
	if err != nil {
		return uuid.Nil, err
	}
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return id, nil
	}
	other, err := uuid.Parse(claimed)
	if err != nil {
		return uuid.Nil, ErrInvalidUser
	}
	if other != id {
		return uuid.Nil, ErrMismatch
	}
	return id, nil
}
