package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ListingPending  = "pending"
	ListingActive   = "active"
	ListingRejected = "rejected"
)

// Listing is a land parcel published by an agent.
type Listing struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_listings_agent_status" json:"agent_id"`
	Title         string     `gorm:"not null;size:255" json:"title"`
	Location      string     `gorm:"size:255" json:"location"`
	PriceMinor    int64      `json:"price_minor"`
	Status        string     `gorm:"size:20;not null;default:'pending';index:idx_listings_agent_status" json:"status"`
	IsFeatured    bool       `gorm:"default:false" json:"is_featured"`
	FeaturedUntil *time.Time `gorm:"index" json:"featured_until"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Agent         Profile    `gorm:"foreignKey:AgentID" json:"-"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// FeaturedAt reports whether the listing is featured at t. A set flag with a
// lapsed FeaturedUntil is not featured.
func (l *Listing) FeaturedAt(t time.Time) bool {
	return l.IsFeatured && l.FeaturedUntil != nil && l.FeaturedUntil.After(t)
}
