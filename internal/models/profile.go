package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
	VerificationRejected   = "rejected"
)

// Profile is the agent (tenant) record. Subscription state lives on the profile.
type Profile struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	FullName           string         `gorm:"size:255" json:"full_name"`
	Role               string         `gorm:"size:20;default:'agent'" json:"role"`
	Tier               string         `gorm:"size:20;not null;default:'starter'" json:"tier"`
	SubscriptionExpiry *time.Time     `gorm:"index" json:"subscription_expiry"`
	VerificationStatus string         `gorm:"size:20;not null;default:'unverified'" json:"verification_status"`
	IsVerified         bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Verified reports whether the agent passed verification by either flag.
func (p *Profile) Verified() bool {
	return p.VerificationStatus == VerificationVerified || p.IsVerified
}

// ValidVerificationStatus reports whether s is a known verification status.
func ValidVerificationStatus(s string) bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}
