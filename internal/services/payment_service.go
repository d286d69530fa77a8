package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Attempt is one client-initiated payment to verify.
type Attempt struct {
	Reference string
	TenantID  uuid.UUID
	Type      string

	// subscription
	Tier  plans.Tier
	Cycle plans.BillingCycle

	// boost
	ListingID    uuid.UUID
	DurationDays int

	IPAddress string
	UserAgent string
}

// Outcome is the state produced by a verified payment.
type Outcome struct {
	TransactionID uuid.UUID
	Type          string
	Tier          plans.Tier
	Expiry        *time.Time
	FeaturedUntil *time.Time
	DurationDays  int
	// Replayed is set when the reference had already been applied.
	Replayed bool
}

type PaymentService struct {
	txns          repository.TransactionRepository
	profiles      repository.ProfileRepository
	listings      repository.ListingRepository
	verifier      gateway.Verifier
	subscriptions *SubscriptionService
	boosts        *BoostService
	currency      string
	metrics       *metrics.Collector
	now           func() time.Time
}

func NewPaymentService(
	txns repository.TransactionRepository,
	profiles repository.ProfileRepository,
	listings repository.ListingRepository,
	verifier gateway.Verifier,
	subscriptions *SubscriptionService,
	boosts *BoostService,
	currency string,
	m *metrics.Collector,
) *PaymentService {
	return &PaymentService{
		txns:          txns,
		profiles:      profiles,
		listings:      listings,
		verifier:      verifier,
		subscriptions: subscriptions,
		boosts:        boosts,
		currency:      strings.ToUpper(currency),
		metrics:       m,
		now:           time.Now,
	}
}

// VerifySubscription verifies a subscription payment and applies the tier.
func (s *PaymentService) VerifySubscription(ctx context.Context, a Attempt) (*Outcome, error) {
	a.Type = models.TransactionSubscription
	return s.VerifyAndApply(ctx, a)
}

// VerifyBoost verifies a boost payment and features the listing.
func (s *PaymentService) VerifyBoost(ctx context.Context, a Attempt) (*Outcome, error) {
	a.Type = models.TransactionBoost
	return s.VerifyAndApply(ctx, a)
}

// VerifyAndApply runs the ledger-first verification flow. A pending ledger
// row is written before the gateway is contacted, and once it exists it is
// always moved to success or failed before this returns.
func (s *PaymentService) VerifyAndApply(ctx context.Context, a Attempt) (*Outcome, error) {
	a.Reference = strings.TrimSpace(a.Reference)
	if a.Reference == "" {
		return nil, ErrMissingReference
	}

	price, ok := s.priceFor(a)
	if !ok {
		s.metrics.RecordPayment(a.Type, "invalid")
		return nil, ErrInvalidAttempt
	}
	expected := plans.MinorUnits(price)

	if err := s.checkTarget(ctx, a); err != nil {
		s.metrics.RecordPayment(a.Type, "invalid")
		return nil, err
	}

	txn := &models.Transaction{
		Reference: a.Reference,
		Type:      a.Type,
		AgentID:   a.TenantID,
		Amount:    expected,
		Currency:  s.currency,
		Status:    models.TransactionPending,
		IPAddress: a.IPAddress,
		UserAgent: truncate(a.UserAgent, 512),
	}
	switch a.Type {
	case models.TransactionSubscription:
		txn.Tier = string(a.Tier)
		txn.BillingCycle = string(a.Cycle)
	case models.TransactionBoost:
		listingID := a.ListingID
		txn.ListingID = &listingID
		txn.DurationDays = a.DurationDays
	}

	if err := s.txns.Create(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			s.metrics.RecordPayment(a.Type, "duplicate")
			return s.replay(ctx, a)
		}
		s.metrics.RecordPayment(a.Type, "ledger_error")
		slog.Error("ledger insert failed", "tenant_id", a.TenantID.String(), "reference", a.Reference, "action", "ledger_insert", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}

	defer func() {
		if r := recover(); r != nil {
			if txn.Status == models.TransactionPending {
				s.fail(ctx, txn, "panic", nil)
			}
			panic(r)
		}
	}()

	started := time.Now()
	v, verr := s.verifier.Verify(ctx, a.Reference)
	s.metrics.ObserveGateway(s.verifier.Name(), time.Since(started).Seconds())
	if verr != nil {
		s.fail(ctx, txn, "gateway_unreachable", nil)
		s.metrics.RecordPayment(a.Type, "unreachable")
		slog.Warn("gateway verification failed", "tenant_id", a.TenantID.String(), "reference", a.Reference, "error", verr)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, verr)
	}

	var payload datatypes.JSON
	if len(v.Raw) > 0 {
		payload = datatypes.JSON(v.Raw)
	}

	if !v.Paid() {
		s.fail(ctx, txn, "declined:"+truncate(v.Status, 80), payload)
		s.metrics.RecordPayment(a.Type, "declined")
		return nil, fmt.Errorf("%w: gateway status %q", ErrPaymentDeclined, v.Status)
	}
	if v.Amount != expected {
		s.fail(ctx, txn, "amount_mismatch", payload)
		s.metrics.RecordPayment(a.Type, "amount_mismatch")
		slog.Warn("paid amount mismatch", "tenant_id", a.TenantID.String(), "reference", a.Reference, "expected", expected, "paid", v.Amount)
		return nil, fmt.Errorf("%w: expected %d, paid %d", ErrAmountMismatch, expected, v.Amount)
	}
	if v.Currency != "" && s.currency != "" && v.Currency != s.currency {
		s.fail(ctx, txn, "currency_mismatch", payload)
		s.metrics.RecordPayment(a.Type, "currency_mismatch")
		return nil, fmt.Errorf("%w: expected %s, paid %s", ErrCurrencyMismatch, s.currency, v.Currency)
	}

	out := &Outcome{TransactionID: txn.ID, Type: a.Type}
	switch a.Type {
	case models.TransactionSubscription:
		state, aerr := s.subscriptions.Apply(ctx, a.TenantID, a.Tier, a.Cycle)
		if aerr != nil {
			s.inconsistent(ctx, txn, "effect_failed", aerr, payload)
			return nil, aerr
		}
		out.Tier = state.Tier
		out.Expiry = &state.Expiry
	case models.TransactionBoost:
		until, aerr := s.boosts.Apply(ctx, a.ListingID, a.DurationDays)
		if aerr != nil {
			s.inconsistent(ctx, txn, "effect_failed", aerr, payload)
			return nil, aerr
		}
		out.FeaturedUntil = &until
		out.DurationDays = a.DurationDays
	}

	if err := s.txns.MarkSuccess(context.WithoutCancel(ctx), txn.ID, payload, s.now().UTC()); err != nil {
		// The effect is applied but the ledger cannot say so.
		s.inconsistent(ctx, txn, "ledger_finalize_failed", fmt.Errorf("mark transaction success: %w", err), payload)
		return nil, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}
	txn.Status = models.TransactionSuccess

	s.metrics.RecordPayment(a.Type, "success")
	slog.Info("payment verified", "tenant_id", a.TenantID.String(), "reference", a.Reference, "type", a.Type, "amount", expected)
	return out, nil
}

// ListTransactions pages through the ledger, newest first. An empty status
// lists every row.
// TransactionPage is one page of the ledger with the paging actually applied.
type TransactionPage struct {
	Transactions []models.Transaction
	Total        int64
	Limit        int
	Offset       int
}

func (s *PaymentService) ListTransactions(ctx context.Context, status string, limit, offset int) (*TransactionPage, error) {
	switch status {
	case "", models.TransactionPending, models.TransactionSuccess, models.TransactionFailed:
	default:
		return nil, ErrInvalidStatusFilter
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	txns, total, err := s.txns.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &TransactionPage{Transactions: txns, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *PaymentService) priceFor(a Attempt) (int64, bool) {
	switch a.Type {
	case models.TransactionSubscription:
		return plans.SubscriptionPrice(a.Tier, a.Cycle)
	case models.TransactionBoost:
		return plans.BoostPrice(a.DurationDays)
	}
	return 0, false
}

func (s *PaymentService) checkTarget(ctx context.Context, a Attempt) error {
	if _, err := s.profiles.GetByID(ctx, a.TenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("load agent: %w", err)
	}
	if a.Type != models.TransactionBoost {
		return nil
	}
	listing, err := s.listings.GetByID(ctx, a.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("load listing: %w", err)
	}
	if listing.AgentID != a.TenantID {
		return ErrListingNotOwned
	}
	return nil
}

// replay answers a reused reference from the ledger without calling the
// gateway again. Only a successful row of the same agent and type is
// reported as a success.
func (s *PaymentService) replay(ctx context.Context, a Attempt) (*Outcome, error) {
	existing, err := s.txns.GetByReference(ctx, a.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup duplicate reference: %v", ErrLedgerWriteFailed, err)
	}
	if existing.Status != models.TransactionSuccess || existing.AgentID != a.TenantID || existing.Type != a.Type {
		return nil, &AlreadyProcessedError{Transaction: existing}
	}

	out := &Outcome{TransactionID: existing.ID, Type: existing.Type, Replayed: true}
	switch existing.Type {
	case models.TransactionSubscription:
		profile, err := s.profiles.GetByID(ctx, a.TenantID)
		if err != nil {
			return nil, fmt.Errorf("load agent: %w", err)
		}
		out.Tier = plans.ParseTier(profile.Tier)
		out.Expiry = profile.SubscriptionExpiry
	case models.TransactionBoost:
		if existing.ListingID != nil {
			listing, err := s.listings.GetByID(ctx, *existing.ListingID)
			if err != nil {
				return nil, fmt.Errorf("load listing: %w", err)
			}
			out.FeaturedUntil = listing.FeaturedUntil
		}
		out.DurationDays = existing.DurationDays
	}
	return out, nil
}

// fail terminates the ledger row. It runs detached from the request context
// so a cancelled request still leaves a terminal row.
func (s *PaymentService) fail(ctx context.Context, txn *models.Transaction, reason string, payload datatypes.JSON) {
	if err := s.txns.MarkFailed(context.WithoutCancel(ctx), txn.ID, reason, payload); err != nil {
		slog.Error("failed to terminate transaction", "reference", txn.Reference, "tenant_id", txn.AgentID.String(),
			"action", "ledger_terminate", "reason", reason, "error", err)
		return
	}
	txn.Status = models.TransactionFailed
}

// inconsistent records a payment the gateway confirmed but whose effect could
// not be applied. The row is failed so support can reconcile it by hand.
func (s *PaymentService) inconsistent(ctx context.Context, txn *models.Transaction, reason string, cause error, payload datatypes.JSON) {
	s.fail(ctx, txn, reason, payload)
	s.metrics.RecordPayment(txn.Type, "effect_failed")
	slog.Error("payment confirmed but effect not applied",
		"tenant_id", txn.AgentID.String(), "reference", txn.Reference, "type", txn.Type,
		"action", "payment_inconsistency", "error", cause)
	sentry.CaptureException(fmt.Errorf("payment %s confirmed but not applied: %w", txn.Reference, cause))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
