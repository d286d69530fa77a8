package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormProfileRepository) ApplySubscription(ctx context.Context, id uuid.UUID, tier string, expiry time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tier":                tier,
			"subscription_expiry": expiry,
			"verification_status": models.VerificationVerified,
			"is_verified":         true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProfileRepository) ListExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("subscription_expiry IS NOT NULL AND subscription_expiry < ?", now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list expired profiles: %w", err)
	}
	return ids, nil
}

func (r *GormProfileRepository) Downgrade(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"tier":                "starter",
			"subscription_expiry": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *GormProfileRepository) SetVerification(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status": status,
			"is_verified":         status == models.VerificationVerified,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProfileRepository) PromoteToAdmin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND role <> ?", id, "admin").
		Update("role", "admin").Error
}
