package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
)

type BoostService struct {
	listings repository.ListingRepository
	now      func() time.Time
}

func NewBoostService(listings repository.ListingRepository) *BoostService {
	return &BoostService{listings: listings, now: time.Now}
}

// Apply features the listing for days from now. The agent's tier is untouched.
func (s *BoostService) Apply(ctx context.Context, listingID uuid.UUID, days int) (time.Time, error) {
	until := s.now().UTC().AddDate(0, 0, days)
	if err := s.listings.Feature(ctx, listingID, until); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrListingUpdateFailed, err)
	}
	return until, nil
}

// Featured lists active listings whose boost has not lapsed.
func (s *BoostService) Featured(ctx context.Context, limit int) ([]models.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	now := s.now()
	listings, err := s.listings.ListFeatured(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured listings: %w", err)
	}
	out := listings[:0]
	for _, l := range listings {
		if l.FeaturedAt(now) {
			out = append(out, l)
		}
	}
	return out, nil
}
