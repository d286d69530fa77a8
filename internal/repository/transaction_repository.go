package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GormTransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create relies on the unique index on reference. The DB must be opened with
// TranslateError so duplicates surface as gorm.ErrDuplicatedKey.
func (r *GormTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	txn.Status = models.TransactionPending
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *GormTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *GormTransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *GormTransactionRepository) MarkSuccess(ctx context.Context, id uuid.UUID, payload datatypes.JSON, verifiedAt time.Time) error {
	return r.terminate(ctx, id, map[string]interface{}{
		"status":           models.TransactionSuccess,
		"gateway_response": payload,
		"verified_at":      verifiedAt,
	})
}

func (r *GormTransactionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, payload datatypes.JSON) error {
	updates := map[string]interface{}{
		"status":         models.TransactionFailed,
		"failure_reason": reason,
	}
	if len(payload) > 0 {
		updates["gateway_response"] = payload
	}
	return r.terminate(ctx, id, updates)
}

// terminate only moves rows out of pending; a terminal row is never rewritten.
func (r *GormTransactionRepository) terminate(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTransactionRepository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ? AND created_at < ?", models.TransactionPending, cutoff).
		Updates(map[string]interface{}{
			"status":         models.TransactionFailed,
			"failure_reason": "stale_pending",
		})
	return result.RowsAffected, result.Error
}

func (r *GormTransactionRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
