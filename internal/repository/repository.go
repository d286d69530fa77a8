// Package repository is the store contract for profiles, listings and the
// payment ledger. Every call commits on its own; nothing here spans a
// database transaction.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateReference = errors.New("transaction reference already exists")
)

// ProfileRepository reads and writes the subscription fields of agent profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// ApplySubscription overwrites tier and expiry and marks the agent verified.
	ApplySubscription(ctx context.Context, id uuid.UUID, tier string, expiry time.Time) error
	// ListExpired returns ids of profiles whose expiry is set and before now.
	ListExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	// Downgrade resets tier to starter and clears expiry for ids.
	Downgrade(ctx context.Context, ids []uuid.UUID) (int64, error)
	SetVerification(ctx context.Context, id uuid.UUID, status string) error
	// PromoteToAdmin is a no-op when the stored role is already admin.
	PromoteToAdmin(ctx context.Context, id uuid.UUID) error
}

// ListingRepository reads and writes listing publish and boost state.
type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	// CountActive counts the agent's active listings other than exclude.
	CountActive(ctx context.Context, agentID, exclude uuid.UUID) (int64, error)
	// SetStatus sets the publish status; clearFeatured also drops any boost.
	SetStatus(ctx context.Context, id uuid.UUID, status string, clearFeatured bool) error
	Feature(ctx context.Context, id uuid.UUID, until time.Time) error
	// ListActiveByAgent orders by updated_at desc (nulls last), then created_at desc.
	ListActiveByAgent(ctx context.Context, agentID uuid.UUID) ([]models.Listing, error)
	// Demote moves active listings back to pending and drops their boost.
	Demote(ctx context.Context, ids []uuid.UUID) (int64, error)
	ListFeatured(ctx context.Context, now time.Time, limit int) ([]models.Listing, error)
	ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error)
}

// TransactionRepository is the append-mostly payment ledger.
type TransactionRepository interface {
	// Create inserts a pending row; a reused reference yields ErrDuplicateReference.
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	MarkSuccess(ctx context.Context, id uuid.UUID, payload datatypes.JSON, verifiedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, payload datatypes.JSON) error
	// FailStalePending fails rows still pending that were created before cutoff.
	FailStalePending(ctx context.Context, cutoff time.Time) (int64, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Transaction, int64, error)
}
