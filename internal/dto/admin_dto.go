package dto

import "time"

type SetVerificationRequest struct {
	Status string `json:"status"`
}

type RejectListingRequest struct {
	Reason string `json:"reason"`
}

type TransactionResponse struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`
	Type          string     `json:"type"`
	AgentID       string     `json:"agentId"`
	ListingID     string     `json:"listingId,omitempty"`
	Tier          string     `json:"tier,omitempty"`
	BillingCycle  string     `json:"billingCycle,omitempty"`
	DurationDays  int        `json:"duration,omitempty"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failureReason,omitempty"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
