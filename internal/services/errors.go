package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
)

var (
	ErrMissingReference         = errors.New("payment reference is required")
	ErrInvalidAttempt           = errors.New("payment attempt is not a priced plan or boost")
	ErrTenantNotFound           = errors.New("agent not found")
	ErrListingNotFound          = errors.New("listing not found")
	ErrListingNotOwned          = errors.New("listing does not belong to this agent")
	ErrLedgerWriteFailed        = errors.New("could not record payment attempt")
	ErrGatewayUnreachable       = errors.New("payment verification failed")
	ErrPaymentDeclined          = errors.New("payment was not successful")
	ErrAmountMismatch           = errors.New("paid amount does not match the price")
	ErrCurrencyMismatch         = errors.New("paid currency does not match the price")
	ErrSubscriptionUpdateFailed = errors.New("payment confirmed but subscription update failed")
	ErrListingUpdateFailed      = errors.New("payment confirmed but listing update failed")
	ErrAlreadyProcessed         = errors.New("payment reference already processed")
	ErrQuotaExceeded            = errors.New("active listing quota exceeded")
	ErrInvalidVerification      = errors.New("invalid verification status")
	ErrInvalidStatusFilter      = errors.New("invalid transaction status filter")
)

// QuotaExceededError carries the limit and plan so clients can prompt an upgrade.
type QuotaExceededError struct {
	Quota    int
	PlanName string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("You have reached the limit of %d active listing(s) on the %s plan. Upgrade to publish more.", e.Quota, e.PlanName)
}

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// AlreadyProcessedError is returned when a reference was already used by a
// ledger row that cannot be replayed as a success for this caller.
type AlreadyProcessedError struct {
	Transaction *models.Transaction
}

func (e *AlreadyProcessedError) Error() string {
	if e.Transaction == nil {
		return ErrAlreadyProcessed.Error()
	}
	return fmt.Sprintf("%s (status %s)", ErrAlreadyProcessed.Error(), e.Transaction.Status)
}

func (e *AlreadyProcessedError) Is(target error) bool { return target == ErrAlreadyProcessed }
