package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository/repotest"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "handler-test-secret"

type fakeGateway struct {
	result *gateway.Verification
	err    error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Verify(_ context.Context, reference string) (*gateway.Verification, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := *g.result
	out.Reference = reference
	return &out, nil
}

type harness struct {
	app   *fiber.App
	store *repotest.Store
	gw    *fakeGateway
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{JWTSecret: secret, CronSecret: "cron", AdminToken: "admin-tok", Currency: "NGN"}
	store := repotest.NewStore()
	gw := &fakeGateway{result: &gateway.Verification{Status: gateway.StatusSuccess, Currency: "NGN", Raw: json.RawMessage(`{"ok":true}`)}}
	m := metrics.NewCollector()

	subs := services.NewSubscriptionService(store.Profiles(), store.Listings())
	boosts := services.NewBoostService(store.Listings())
	listings := services.NewListingService(store.Profiles(), store.Listings(), m)
	payments := services.NewPaymentService(store.Transactions(), store.Profiles(), store.Listings(), gw, subs, boosts, cfg.Currency, m)
	agents := services.NewAgentService(store.Profiles())

	app := fiber.New()
	routes.Setup(app, cfg, store.Profiles(), routes.Handlers{
		Health:  handlers.NewHealthHandler(func() error { return nil }),
		Payment: handlers.NewPaymentHandler(payments),
		Listing: handlers.NewListingHandler(listings, boosts, subs),
		Job: handlers.NewJobHandler(
			jobs.NewExpiryReconciler(store.Profiles(), store.Listings(), m, 2),
			jobs.NewPendingSweeper(store.Transactions(), 15*time.Minute, m),
		),
		Admin: handlers.NewAdminHandler(agents, listings, payments),
	}, m)

	return &harness{app: app, store: store, gw: gw}
}

func token(t *testing.T, sub uuid.UUID, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub.String(), "exp": time.Now().Add(time.Hour).Unix()}
	for k, v := range extra {
		claims[k] = v
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (h *harness) do(t *testing.T, method, path, bearer string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestBoostEndpoint(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{Tier: "pro"})
	listing := h.store.AddListing(models.Listing{AgentID: agent.ID, Status: models.ListingActive})
	h.gw.result.Amount = plans.MinorUnits(50)

	status, body := h.do(t, "POST", "/api/payments/boost", token(t, agent.ID, nil), map[string]any{
		"reference": "PSK_1", "propertyId": listing.ID.String(), "duration": 14,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(14), body["duration"])
	assert.NotEmpty(t, body["transactionId"])
	assert.NotEmpty(t, body["featuredUntil"])
	assert.True(t, h.store.Listing(listing.ID).IsFeatured)
}

func TestBoostEndpoint_Errors(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{Tier: "pro"})
	other := h.store.AddProfile(models.Profile{Tier: "pro"})
	listing := h.store.AddListing(models.Listing{AgentID: other.ID, Status: models.ListingActive})
	tok := token(t, agent.ID, nil)

	status, _ := h.do(t, "POST", "/api/payments/boost", "", map[string]any{"reference": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = h.do(t, "POST", "/api/payments/boost", tok, map[string]any{"propertyId": listing.ID.String(), "duration": 7})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = h.do(t, "POST", "/api/payments/boost", tok, map[string]any{
		"reference": "r1", "propertyId": listing.ID.String(), "duration": 7, "userId": other.ID.String(),
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.do(t, "POST", "/api/payments/boost", tok, map[string]any{
		"reference": "r2", "propertyId": listing.ID.String(), "duration": 7,
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.do(t, "POST", "/api/payments/boost", tok, map[string]any{
		"reference": "r3", "propertyId": uuid.NewString(), "duration": 7,
	})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = h.do(t, "POST", "/api/payments/boost", tok, map[string]any{
		"reference": "r4", "propertyId": listing.ID.String(), "duration": 9,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	assert.Empty(t, h.store.AllTransactions())
}

func TestSubscriptionEndpoint(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{})
	tok := token(t, agent.ID, nil)
	h.gw.result.Amount = plans.MinorUnits(35_000)

	status, body := h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{
		"reference": "SUB_1", "userId": agent.ID.String(), "tier": "Premium", "billingCycle": "monthly",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "premium", body["tier"])
	assert.NotNil(t, body["expiry"])
	assert.Equal(t, "premium", h.store.Profile(agent.ID).Tier)

	// same reference again replays without a second charge check
	status, body = h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{
		"reference": "SUB_1", "tier": "premium", "billingCycle": "monthly",
	})
	assert.Equal(t, fiber.StatusOK, status, body)
	assert.Len(t, h.store.AllTransactions(), 1)

	other := h.store.AddProfile(models.Profile{})
	status, _ = h.do(t, "POST", "/api/payments/subscription/verify", token(t, other.ID, nil), map[string]any{
		"reference": "SUB_1", "tier": "premium", "billingCycle": "monthly",
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestSubscriptionEndpoint_Failures(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{})
	tok := token(t, agent.ID, nil)

	status, _ := h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{"reference": "a", "tier": "gold"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{"reference": "a", "tier": "pro", "billingCycle": "weekly"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	h.gw.result.Amount = plans.MinorUnits(15_000) - 1
	status, body := h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{"reference": "short", "tier": "pro"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Payment verification failed", body["message"])

	h.gw.err = errors.New("dial tcp: timeout")
	status, _ = h.do(t, "POST", "/api/payments/subscription/verify", tok, map[string]any{"reference": "down", "tier": "pro"})
	assert.Equal(t, fiber.StatusBadGateway, status)

	for _, txn := range h.store.AllTransactions() {
		assert.Equal(t, models.TransactionFailed, txn.Status)
	}
	assert.Equal(t, "starter", h.store.Profile(agent.ID).Tier)

	ghost := uuid.New()
	h.gw.err = nil
	h.gw.result.Amount = plans.MinorUnits(15_000)
	status, _ = h.do(t, "POST", "/api/payments/subscription/verify", token(t, ghost, nil), map[string]any{"reference": "ghost", "tier": "pro"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestActivateEndpoint(t *testing.T) {
	h := newHarness(t)
	expiry := time.Now().AddDate(0, 1, 0)
	agent := h.store.AddProfile(models.Profile{Tier: "pro", SubscriptionExpiry: &expiry, VerificationStatus: models.VerificationVerified})
	tok := token(t, agent.ID, nil)

	l := h.store.AddListing(models.Listing{AgentID: agent.ID})
	status, body := h.do(t, "POST", "/api/listings/activate", tok, map[string]any{"propertyId": l.ID.String(), "userId": agent.ID.String()})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "active", body["status"])

	for i := 0; i < 29; i++ {
		h.store.AddListing(models.Listing{AgentID: agent.ID, Status: models.ListingActive})
	}
	extra := h.store.AddListing(models.Listing{AgentID: agent.ID})
	status, body = h.do(t, "POST", "/api/listings/activate", tok, map[string]any{"propertyId": extra.ID.String()})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, float64(30), body["quota"])
	assert.Equal(t, "Pro", body["plan"])
	assert.Contains(t, body["message"], "Upgrade")
	assert.Equal(t, models.ListingPending, h.store.Listing(extra.ID).Status)

	status, _ = h.do(t, "POST", "/api/listings/activate", tok, map[string]any{"propertyId": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStatusAndFeaturedEndpoints(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{Tier: "starter"})
	until := time.Now().Add(48 * time.Hour)
	h.store.AddListing(models.Listing{AgentID: agent.ID, Title: "Acre in Epe", Status: models.ListingActive, IsFeatured: true, FeaturedUntil: &until})

	status, body := h.do(t, "GET", "/api/subscription/status", token(t, agent.ID, nil), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "starter", body["effectiveTier"])
	assert.Equal(t, float64(1), body["activeCount"])
	assert.Equal(t, "danger", body["band"])

	status, body = h.do(t, "GET", "/api/listings/featured", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	listings, ok := body["listings"].([]any)
	require.True(t, ok)
	require.Len(t, listings, 1)
	assert.Equal(t, "Acre in Epe", listings[0].(map[string]any)["title"])
}

func TestJobEndpoints(t *testing.T) {
	h := newHarness(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	agent := h.store.AddProfile(models.Profile{Tier: "pro", SubscriptionExpiry: &yesterday})
	for i := 0; i < 3; i++ {
		h.store.AddListing(models.Listing{AgentID: agent.ID, Status: models.ListingActive, UpdatedAt: time.Now().Add(-time.Duration(i) * time.Hour)})
	}

	status, _ := h.do(t, "GET", "/api/jobs/expiry-reconcile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := h.do(t, "GET", "/api/jobs/expiry-reconcile", "", nil, "X-Cron-Secret", "cron")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["expiredCount"])
	assert.Equal(t, float64(2), body["unpublishedCount"])

	status, body = h.do(t, "GET", "/api/jobs/expiry-reconcile", "cron", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["expiredCount"])

	status, body = h.do(t, "GET", "/api/jobs/pending-sweep", "cron", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["failedCount"])
}

func TestAdminEndpoints(t *testing.T) {
	h := newHarness(t)
	agent := h.store.AddProfile(models.Profile{})
	l := h.store.AddListing(models.Listing{AgentID: agent.ID, Status: models.ListingActive})
	adminHeader := []string{"X-Admin-Token", "admin-tok"}

	status, _ := h.do(t, "PUT", "/api/admin/agents/"+agent.ID.String()+"/verification", token(t, agent.ID, nil), map[string]any{"status": "verified"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = h.do(t, "PUT", "/api/admin/agents/"+agent.ID.String()+"/verification", "", map[string]any{"status": "verified"}, adminHeader...)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, h.store.Profile(agent.ID).IsVerified)

	status, _ = h.do(t, "PUT", "/api/admin/agents/"+agent.ID.String()+"/verification", "", map[string]any{"status": "maybe"}, adminHeader...)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = h.do(t, "PUT", "/api/admin/listings/"+l.ID.String()+"/reject", "", map[string]any{"reason": "duplicate"}, adminHeader...)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.ListingRejected, h.store.Listing(l.ID).Status)

	status, _ = h.do(t, "PUT", "/api/admin/listings/"+uuid.NewString()+"/reject", "", nil, adminHeader...)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := h.do(t, "GET", "/api/admin/transactions?status=failed", "", nil, adminHeader...)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["total"])

	// out-of-range paging is reported as applied
	status, body = h.do(t, "GET", "/api/admin/transactions?limit=0&offset=-1", "", nil, adminHeader...)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(50), body["limit"])
	assert.Equal(t, float64(0), body["offset"])

	status, _ = h.do(t, "GET", "/api/admin/transactions?status=weird", "", nil, adminHeader...)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, "GET", "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "go_goroutines")
}
