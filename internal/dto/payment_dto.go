package dto

import "time"

type BoostPaymentRequest struct {
	Reference  string `json:"reference"`
	PropertyID string `json:"propertyId"`
	Duration   int    `json:"duration"`
	UserID     string `json:"userId,omitempty"`
}

type BoostPaymentResponse struct {
	Success       bool      `json:"success"`
	FeaturedUntil time.Time `json:"featuredUntil"`
	Duration      int       `json:"duration"`
	TransactionID string    `json:"transactionId"`
}

type SubscriptionVerifyRequest struct {
	Reference    string `json:"reference"`
	UserID       string `json:"userId"`
	Tier         string `json:"tier"`
	BillingCycle string `json:"billingCycle"`
}

type SubscriptionVerifyResponse struct {
	Success       bool       `json:"success"`
	Tier          string     `json:"tier"`
	Expiry        *time.Time `json:"expiry"`
	TransactionID string     `json:"transactionId"`
}
