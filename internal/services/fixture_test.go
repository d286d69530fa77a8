package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository/repotest"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubVerifier answers every lookup with the configured result.
type stubVerifier struct {
	mu     sync.Mutex
	result *gateway.Verification
	err    error
	panics bool
	calls  int
	// onVerify runs inside Verify, after the call is counted.
	onVerify func()
}

func (v *stubVerifier) Name() string { return "stub" }

func (v *stubVerifier) Verify(_ context.Context, reference string) (*gateway.Verification, error) {
	v.mu.Lock()
	v.calls++
	hook := v.onVerify
	v.mu.Unlock()
	if hook != nil {
		hook()
	}
	if v.panics {
		panic("gateway client blew up")
	}
	if v.err != nil {
		return nil, v.err
	}
	out := *v.result
	out.Reference = reference
	return &out, nil
}

func (v *stubVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func paid(amount int64) *stubVerifier {
	raw, _ := json.Marshal(map[string]any{"status": "success", "amount": amount})
	return &stubVerifier{result: &gateway.Verification{
		Status:   gateway.StatusSuccess,
		Amount:   amount,
		Currency: "NGN",
		Raw:      raw,
	}}
}

type fixture struct {
	store    *repotest.Store
	verifier *stubVerifier
	subs     *SubscriptionService
	boosts   *BoostService
	listings *ListingService
	payments *PaymentService
	agents   *AgentService
}

func newFixture(v *stubVerifier) *fixture {
	clock := func() time.Time { return testNow }
	store := repotest.NewStore()
	store.SetClock(clock)

	subs := NewSubscriptionService(store.Profiles(), store.Listings())
	subs.now = clock
	boosts := NewBoostService(store.Listings())
	boosts.now = clock
	listings := NewListingService(store.Profiles(), store.Listings(), nil)
	listings.now = clock
	payments := NewPaymentService(store.Transactions(), store.Profiles(), store.Listings(), v, subs, boosts, "ngn", nil)
	payments.now = clock

	return &fixture{
		store:    store,
		verifier: v,
		subs:     subs,
		boosts:   boosts,
		listings: listings,
		payments: payments,
		agents:   NewAgentService(store.Profiles()),
	}
}

func (f *fixture) agent(tier string, expiry *time.Time, verified bool) models.Profile {
	p := models.Profile{Email: uuid.NewString() + "@example.com", Tier: tier, SubscriptionExpiry: expiry}
	if verified {
		p.VerificationStatus = models.VerificationVerified
		p.IsVerified = true
	}
	return f.store.AddProfile(p)
}

func (f *fixture) listing(agentID uuid.UUID, status string) models.Listing {
	return f.store.AddListing(models.Listing{AgentID: agentID, Title: "Plot", Location: "Lekki", Status: status})
}

func ptr(t time.Time) *time.Time { return &t }
