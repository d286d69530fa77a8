package handlers

import (
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListingHandler struct {
	listings      *services.ListingService
	boosts        *services.BoostService
	subscriptions *services.SubscriptionService
}

func NewListingHandler(listings *services.ListingService, boosts *services.BoostService, subscriptions *services.SubscriptionService) *ListingHandler {
	return &ListingHandler{listings: listings, boosts: boosts, subscriptions: subscriptions}
}

// Activate recomputes the publish state of a listing after a create or edit.
func (h *ListingHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	tenantID, err := tenant.Resolve(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	listingID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid propertyId")
	}

	d, err := h.listings.DecideActivation(c.UserContext(), listingID, tenantID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ActivateListingResponse{
		Status:      d.Status,
		Tier:        string(d.Tier),
		Quota:       d.Quota,
		ActiveCount: d.ActiveCount,
	})
}

func (h *ListingHandler) Featured(c *fiber.Ctx) error {
	listings, err := h.boosts.Featured(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.FeaturedListingsResponse{Listings: make([]dto.FeaturedListing, 0, len(listings))}
	for _, l := range listings {
		resp.Listings = append(resp.Listings, dto.FeaturedListing{
			ID:            l.ID.String(),
			AgentID:       l.AgentID.String(),
			Title:         l.Title,
			Location:      l.Location,
			PriceMinor:    l.PriceMinor,
			FeaturedUntil: *l.FeaturedUntil,
		})
	}
	return c.JSON(resp)
}

func (h *ListingHandler) SubscriptionStatus(c *fiber.Ctx) error {
	tenantID, err := tenant.GetTenantID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	s, err := h.subscriptions.Status(c.UserContext(), tenantID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SubscriptionStatusResponse{
		Tier:          string(s.StoredTier),
		EffectiveTier: string(s.EffectiveTier),
		PlanName:      s.PlanName,
		Expiry:        s.Expiry,
		Quota:         s.Quota,
		ActiveCount:   s.ActiveCount,
		Band:          string(s.Band),
		Verified:      s.Verified,
	})
}
