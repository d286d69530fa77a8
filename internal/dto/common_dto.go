package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// QuotaErrorResponse lets clients prompt an upgrade.
type QuotaErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Quota   int    `json:"quota"`
	Plan    string `json:"plan"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
