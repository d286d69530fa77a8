package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// respondError maps service errors to HTTP responses. Server-side failures
// get a generic message; the cause is logged.
func respondError(c *fiber.Ctx, err error) error {
	var quota *services.QuotaExceededError
	switch {
	case errors.As(err, &quota):
		return c.Status(fiber.StatusForbidden).JSON(dto.QuotaErrorResponse{
			Error:   true,
			Message: quota.Error(),
			Quota:   quota.Quota,
			Plan:    quota.PlanName,
		})

	case errors.Is(err, services.ErrMissingReference),
		errors.Is(err, services.ErrInvalidAttempt),
		errors.Is(err, services.ErrInvalidVerification),
		errors.Is(err, services.ErrInvalidStatusFilter),
		errors.Is(err, tenant.ErrInvalidUser):
		return errorJSON(c, fiber.StatusBadRequest, rootMessage(err))

	case errors.Is(err, services.ErrPaymentDeclined),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrCurrencyMismatch):
		return errorJSON(c, fiber.StatusBadRequest, "Payment verification failed")

	case errors.Is(err, tenant.ErrNoToken):
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")

	case errors.Is(err, tenant.ErrMismatch),
		errors.Is(err, services.ErrListingNotOwned):
		return errorJSON(c, fiber.StatusForbidden, rootMessage(err))

	case errors.Is(err, services.ErrTenantNotFound),
		errors.Is(err, services.ErrListingNotFound):
		return errorJSON(c, fiber.StatusNotFound, rootMessage(err))

	case errors.Is(err, services.ErrAlreadyProcessed):
		return errorJSON(c, fiber.StatusConflict, services.ErrAlreadyProcessed.Error())

	case errors.Is(err, services.ErrGatewayUnreachable):
		return errorJSON(c, fiber.StatusBadGateway, "Payment verification failed")

	case errors.Is(err, services.ErrSubscriptionUpdateFailed),
		errors.Is(err, services.ErrListingUpdateFailed):
		return errorJSON(c, fiber.StatusInternalServerError, "Payment received but could not be applied. Support has been notified.")
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// rootMessage strips wrapping context so clients only see the sentinel text.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrMissingReference, services.ErrInvalidAttempt, services.ErrInvalidVerification,
		services.ErrInvalidStatusFilter, services.ErrListingNotOwned, services.ErrTenantNotFound,
		services.ErrListingNotFound, tenant.ErrMismatch, tenant.ErrInvalidUser,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
