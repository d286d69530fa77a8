package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository/repotest"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func adminApp(store *repotest.Store, cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/admin", AdminJWT(cfg), AdminRequired(store.Profiles(), cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/token-only", AdminRequired(store.Profiles(), cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAdminRequired_Precedence(t *testing.T) {
	store := repotest.NewStore()
	allowlisted := store.AddProfile(models.Profile{Email: "boss@parcel.ng"})
	stored := store.AddProfile(models.Profile{Email: "ops@parcel.ng", Role: "admin"})
	plain := store.AddProfile(models.Profile{Email: "agent@parcel.ng"})
	claimed := store.AddProfile(models.Profile{Email: "claimed@parcel.ng"})

	cfg := &config.Config{JWTSecret: testSecret, AdminToken: "tok", AdminEmails: "BOSS@parcel.ng"}
	app := adminApp(store, cfg)

	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, fiber.StatusOK, get(t, app, "/token-only", map[string]string{"X-Admin-Token": "tok"}))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/token-only", map[string]string{"X-Admin-Token": "nope"}))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/admin", nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", map[string]string{"X-Admin-Token": "tok"}))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/admin", map[string]string{"X-Admin-Token": "nope"}))

	roleToken := sign(t, jwt.MapClaims{"sub": claimed.ID.String(), "role": "admin", "exp": exp})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", bearer(roleToken)))
	assert.Equal(t, "admin", store.Profile(claimed.ID).Role)

	emailToken := sign(t, jwt.MapClaims{"sub": allowlisted.ID.String(), "email": "boss@parcel.ng", "exp": exp})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", bearer(emailToken)))
	assert.Equal(t, "admin", store.Profile(allowlisted.ID).Role)

	storedToken := sign(t, jwt.MapClaims{"sub": stored.ID.String(), "exp": exp})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", bearer(storedToken)))

	plainToken := sign(t, jwt.MapClaims{"sub": plain.ID.String(), "email": "agent@parcel.ng", "exp": exp})
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", bearer(plainToken)))
	assert.Equal(t, "agent", store.Profile(plain.ID).Role)
}

func TestAdminRequired_AllowlistByID(t *testing.T) {
	store := repotest.NewStore()
	p := store.AddProfile(models.Profile{})
	cfg := &config.Config{JWTSecret: testSecret, AdminUserIDs: " x , " + p.ID.String()}
	app := adminApp(store, cfg)

	token := sign(t, jwt.MapClaims{"sub": p.ID.String(), "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", bearer(token)))
	assert.Equal(t, "admin", store.Profile(p.ID).Role)
}

func TestCronSecret(t *testing.T) {
	cfg := &config.Config{CronSecret: "s3cret"}
	app := fiber.New()
	app.Get("/job", CronSecret(cfg), func(c *fiber.Ctx) error { return c.SendString("ran") })

	assert.Equal(t, fiber.StatusOK, get(t, app, "/job", map[string]string{"X-Cron-Secret": "s3cret"}))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/job", bearer("s3cret")))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/job", map[string]string{"X-Cron-Secret": "s3cre"}))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/job", nil))

	unset := fiber.New()
	unset.Get("/job", CronSecret(&config.Config{}), func(c *fiber.Ctx) error { return c.SendString("ran") })
	assert.Equal(t, fiber.StatusUnauthorized, get(t, unset, "/job", map[string]string{"X-Cron-Secret": ""}))
}

func TestTenantMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), TenantMiddleware(), func(c *fiber.Ctx) error {
		id, err := tenant.GetTenantID(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})

	id := uuid.New()
	good := sign(t, jwt.MapClaims{"sub": id.String(), "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", bearer(good)))

	bad := sign(t, jwt.MapClaims{"sub": "not-a-uuid", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", bearer(bad)))

	expired := sign(t, jwt.MapClaims{"sub": id.String(), "exp": time.Now().Add(-time.Hour).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", bearer(expired)))
}
