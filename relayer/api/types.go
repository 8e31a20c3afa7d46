package api

import "time"

const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SubmitResponse is the body of POST /api/submit.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	TxHash    string `json:"txHash,omitempty"`
	Error     string `json:"error,omitempty"`
	Status    string `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// RequestResponse is the body of GET /api/requests/{id}.
type RequestResponse struct {
	RequestID       string    `json:"requestId"`
	Status          string    `json:"status"`
	UserAddress     string    `json:"userAddress"`
	ContractAddress string    `json:"contractAddress"`
	FunctionName    string    `json:"functionName"`
	RelayNonce      uint64    `json:"nonce"`
	SignerAddress   string    `json:"signerAddress,omitempty"`
	TxHash          string    `json:"txHash,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
