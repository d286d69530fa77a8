package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *GormListingRepository) CountActive(ctx context.Context, agentID, exclude uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).
		Scopes(tenant.ForAgent(agentID)).
		Where("status = ? AND id <> ?", models.ListingActive, exclude).
		Count(&n).Error
	return n, err
}

func (r *GormListingRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, clearFeatured bool) error {
	updates := map[string]interface{}{"status": status}
	if clearFeatured {
		updates["is_featured"] = false
		updates["featured_until"] = nil
	}
	result := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormListingRepository) Feature(ctx context.Context, id uuid.UUID, until time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_featured":    true,
			"featured_until": until,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormListingRepository) ListActiveByAgent(ctx context.Context, agentID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForAgent(agentID)).
		Where("status = ?", models.ListingActive).
		Order("updated_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

func (r *GormListingRepository) Demote(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id IN ? AND status = ?", ids, models.ListingActive).
		Updates(map[string]interface{}{
			"status":         models.ListingPending,
			"is_featured":    false,
			"featured_until": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *GormListingRepository) ListFeatured(ctx context.Context, now time.Time, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_featured = ? AND featured_until > ?", models.ListingActive, true, now).
		Order("featured_until DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (r *GormListingRepository) ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("is_featured = ? AND (featured_until IS NULL OR featured_until <= ?)", true, now).
		Updates(map[string]interface{}{
			"is_featured":    false,
			"featured_until": nil,
		})
	return result.RowsAffected, result.Error
}
