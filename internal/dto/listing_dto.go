package dto

import "time"

type ActivateListingRequest struct {
	PropertyID string `json:"propertyId"`
	UserID     string `json:"userId"`
}

type ActivateListingResponse struct {
	Status      string `json:"status"`
	Tier        string `json:"tier"`
	Quota       int    `json:"quota"`
	ActiveCount int    `json:"activeCount"`
}

type FeaturedListing struct {
	ID            string    `json:"id"`
	AgentID       string    `json:"agentId"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	PriceMinor    int64     `json:"price"`
	FeaturedUntil time.Time `json:"featuredUntil"`
}

type FeaturedListingsResponse struct {
	Listings []FeaturedListing `json:"listings"`
}

type SubscriptionStatusResponse struct {
	Tier          string     `json:"tier"`
	EffectiveTier string     `json:"effectiveTier"`
	PlanName      string     `json:"planName"`
	Expiry        *time.Time `json:"expiry"`
	Quota         int        `json:"quota"`
	ActiveCount   int        `json:"activeCount"`
	Band          string     `json:"band"`
	Verified      bool       `json:"verified"`
}
