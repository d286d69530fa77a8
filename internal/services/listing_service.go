package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
)

// Decision is the outcome of an activation check.
type Decision struct {
	ListingID   uuid.UUID
	Status      string
	Tier        plans.Tier
	Quota       int
	ActiveCount int
}

type ListingService struct {
	profiles repository.ProfileRepository
	listings repository.ListingRepository
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewListingService(profiles repository.ProfileRepository, listings repository.ListingRepository, m *metrics.Collector) *ListingService {
	return &ListingService{profiles: profiles, listings: listings, metrics: m, now: time.Now}
}

// DecideActivation recomputes the publish state of a listing from the
// agent's effective tier, quota and verification. It is meant to run after
// every create or edit; nothing is cached beyond the stored status.
//
// The count and the status write are separate commits, so two concurrent
// decisions can briefly exceed the quota. The next decision or reconcile
// pass corrects it.
func (s *ListingService) DecideActivation(ctx context.Context, listingID, tenantID uuid.UUID) (*Decision, error) {
	profile, err := s.profiles.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("load agent: %w", err)
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing.AgentID != tenantID {
		return nil, ErrListingNotOwned
	}

	tier := plans.EffectiveTier(profile.Tier, profile.SubscriptionExpiry, s.now())
	quota := plans.QuotaFor(tier)

	var active int64
	if quota != plans.Unlimited {
		active, err = s.listings.CountActive(ctx, tenantID, listingID)
		if err != nil {
			return nil, fmt.Errorf("count active listings: %w", err)
		}
		if active >= int64(quota) {
			// an over-quota listing that is already live goes back to pending
			if listing.Status == models.ListingActive {
				if err := s.listings.SetStatus(ctx, listingID, models.ListingPending, true); err != nil {
					return nil, fmt.Errorf("demote over-quota listing: %w", err)
				}
			}
			s.metrics.RecordActivation("quota_exceeded")
			slog.Info("listing activation blocked by quota",
				"tenant_id", tenantID.String(), "listing_id", listingID.String(),
				"tier", string(tier), "quota", quota, "active", active)
			return nil, &QuotaExceededError{Quota: quota, PlanName: plans.PlanName(tier)}
		}
	}

	status := models.ListingPending
	if plans.IsPaid(tier) && profile.Verified() {
		status = models.ListingActive
	}

	// a listing that is not live cannot stay featured
	clearFeatured := status != models.ListingActive
	if err := s.listings.SetStatus(ctx, listingID, status, clearFeatured); err != nil {
		return nil, fmt.Errorf("update listing status: %w", err)
	}

	s.metrics.RecordActivation(status)
	return &Decision{
		ListingID:   listingID,
		Status:      status,
		Tier:        tier,
		Quota:       quota,
		ActiveCount: int(active),
	}, nil
}

// Reject takes a listing off the market after moderation.
func (s *ListingService) Reject(ctx context.Context, listingID uuid.UUID) error {
	if err := s.listings.SetStatus(ctx, listingID, models.ListingRejected, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("reject listing: %w", err)
	}
	return nil
}
