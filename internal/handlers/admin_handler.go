package handlers

import (
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	agents   *services.AgentService
	listings *services.ListingService
	payments *services.PaymentService
}

func NewAdminHandler(agents *services.AgentService, listings *services.ListingService, payments *services.PaymentService) *AdminHandler {
	return &AdminHandler{agents: agents, listings: listings, payments: payments}
}

func (h *AdminHandler) SetVerification(c *fiber.Ctx) error {
	agentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agent ID")
	}

	var req dto.SetVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.agents.SetVerification(c.UserContext(), agentID, status); err != nil {
		return respondError(c, err)
	}

	slog.Info("agent verification updated", "tenant_id", agentID.String(), "status", status)
	return c.JSON(fiber.Map{"id": agentID.String(), "verificationStatus": status})
}

func (h *AdminHandler) RejectListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	var req dto.RejectListingRequest
	_ = c.BodyParser(&req)

	if err := h.listings.Reject(c.UserContext(), listingID); err != nil {
		return respondError(c, err)
	}

	slog.Info("listing rejected", "listing_id", listingID.String(), "reason", req.Reason)
	return c.JSON(fiber.Map{"id": listingID.String(), "status": "rejected"})
}

func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	page, err := h.payments.ListTransactions(c.UserContext(), c.Query("status"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(page.Transactions)),
		Total:        page.Total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	for _, t := range page.Transactions {
		item := dto.TransactionResponse{
			ID:            t.ID.String(),
			Reference:     t.Reference,
			Type:          t.Type,
			AgentID:       t.AgentID.String(),
			Tier:          t.Tier,
			BillingCycle:  t.BillingCycle,
			DurationDays:  t.DurationDays,
			Amount:        t.Amount,
			Currency:      t.Currency,
			Status:        t.Status,
			FailureReason: t.FailureReason,
			VerifiedAt:    t.VerifiedAt,
			CreatedAt:     t.CreatedAt,
		}
		if t.ListingID != nil {
			item.ListingID = t.ListingID.String()
		}
		resp.Transactions = append(resp.Transactions, item)
	}
	return c.JSON(resp)
}
