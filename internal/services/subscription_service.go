package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
)

// SubscriptionState is the stored subscription after a paid update.
type SubscriptionState struct {
	Tier   plans.Tier
	Expiry time.Time
}

// UsageSummary describes an agent's plan and listing usage for display.
type UsageSummary struct {
	StoredTier    plans.Tier
	EffectiveTier plans.Tier
	PlanName      string
	Expiry        *time.Time
	Quota         int
	ActiveCount   int
	Band          plans.Band
	Verified      bool
}

type SubscriptionService struct {
	profiles repository.ProfileRepository
	listings repository.ListingRepository
	now      func() time.Time
}

func NewSubscriptionService(profiles repository.ProfileRepository, listings repository.ListingRepository) *SubscriptionService {
	return &SubscriptionService{profiles: profiles, listings: listings, now: time.Now}
}

// Apply records a verified subscription payment. The new expiry always
// replaces the old one; paying early does not stack periods. A successful
// payment also marks the agent verified.
func (s *SubscriptionService) Apply(ctx context.Context, tenantID uuid.UUID, tier plans.Tier, cycle plans.BillingCycle) (*SubscriptionState, error) {
	expiry := cycle.Extend(s.now().UTC())
	if err := s.profiles.ApplySubscription(ctx, tenantID, string(tier), expiry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionUpdateFailed, err)
	}
	return &SubscriptionState{Tier: tier, Expiry: expiry}, nil
}

func (s *SubscriptionService) Status(ctx context.Context, tenantID uuid.UUID) (*UsageSummary, error) {
	profile, err := s.profiles.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("load agent: %w", err)
	}

	effective := plans.EffectiveTier(profile.Tier, profile.SubscriptionExpiry, s.now())
	quota := plans.QuotaFor(effective)

	active, err := s.listings.CountActive(ctx, tenantID, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("count active listings: %w", err)
	}

	return &UsageSummary{
		StoredTier:    plans.ParseTier(profile.Tier),
		EffectiveTier: effective,
		PlanName:      plans.PlanName(effective),
		Expiry:        profile.SubscriptionExpiry,
		Quota:         quota,
		ActiveCount:   int(active),
		Band:          plans.UsageBand(int(active), quota),
		Verified:      profile.Verified(),
	}, nil
}
