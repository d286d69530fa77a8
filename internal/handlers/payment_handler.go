package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) VerifyBoost(c *fiber.Ctx) error {
	var req dto.BoostPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	tenantID, err := tenant.Resolve(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if strings.TrimSpace(req.Reference) == "" || req.PropertyID == "" || req.Duration == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "reference, propertyId and duration are required")
	}
	listingID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid propertyId")
	}

	out, err := h.payments.VerifyBoost(c.UserContext(), services.Attempt{
		Reference:    req.Reference,
		TenantID:     tenantID,
		ListingID:    listingID,
		DurationDays: req.Duration,
		IPAddress:    c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.BoostPaymentResponse{
		Success:       true,
		Duration:      out.DurationDays,
		TransactionID: out.TransactionID.String(),
	}
	if out.FeaturedUntil != nil {
		resp.FeaturedUntil = *out.FeaturedUntil
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) VerifySubscription(c *fiber.Ctx) error {
	var req dto.SubscriptionVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	tenantID, err := tenant.Resolve(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if strings.TrimSpace(req.Reference) == "" || req.Tier == "" {
		return errorJSON(c, fiber.StatusBadRequest, "reference and tier are required")
	}
	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	if !plans.Known(tier) {
		return errorJSON(c, fiber.StatusBadRequest, "Unknown tier")
	}
	cycle := plans.Monthly
	if req.BillingCycle != "" {
		parsed, ok := plans.ParseCycle(strings.ToLower(strings.TrimSpace(req.BillingCycle)))
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, "Unknown billingCycle")
		}
		cycle = parsed
	}

	out, err := h.payments.VerifySubscription(c.UserContext(), services.Attempt{
		Reference: req.Reference,
		TenantID:  tenantID,
		Tier:      plans.Tier(tier),
		Cycle:     cycle,
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SubscriptionVerifyResponse{
		Success:       true,
		Tier:          string(out.Tier),
		Expiry:        out.Expiry,
		TransactionID: out.TransactionID.String(),
	})
}
