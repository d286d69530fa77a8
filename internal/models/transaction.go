package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TransactionSubscription = "subscription"
	TransactionBoost        = "boost"

	TransactionPending = "pending"
	TransactionSuccess = "success"
	TransactionFailed  = "failed"
)

// Transaction is the ledger row for a single payment attempt. Rows are never
// deleted; they only move from pending to a terminal status.
type Transaction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Reference       string         `gorm:"not null;size:255;uniqueIndex" json:"reference"`
	Type            string         `gorm:"size:20;not null" json:"type"`
	AgentID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"agent_id"`
	ListingID       *uuid.UUID     `gorm:"type:uuid;index" json:"listing_id,omitempty"`
	Tier            string         `gorm:"size:20" json:"tier,omitempty"`
	BillingCycle    string         `gorm:"size:20" json:"billing_cycle,omitempty"`
	DurationDays    int            `json:"duration_days,omitempty"`
	Amount          int64          `gorm:"not null" json:"amount"`
	Currency        string         `gorm:"size:3;not null" json:"currency"`
	Status          string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	FailureReason   string         `gorm:"size:100" json:"failure_reason,omitempty"`
	GatewayResponse datatypes.JSON `gorm:"type:jsonb" json:"gateway_response,omitempty"`
	IPAddress       string         `gorm:"size:64" json:"-"`
	UserAgent       string         `gorm:"size:512" json:"-"`
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the transaction reached success or failed.
func (t *Transaction) Terminal() bool {
	return t.Status == TransactionSuccess || t.Status == TransactionFailed
}
