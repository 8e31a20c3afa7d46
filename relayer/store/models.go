// Package store contains GORM-backed SQLite models used by the relayer.
//
// Database Structure (database file: relayer.db):
//
//	relayer.db
//	├── relay_requests
//	└── relay_nonces
package store

import (
	"gorm.io/gorm"
)

// Request statuses. A request moves received → validated → submitted and
// ends confirmed, failed or pending; received → rejected when it never
// reaches the chain.
const (
	StatusReceived  = "received"
	StatusValidated = "validated"
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
	StatusPending   = "pending"
)

// IsTerminal reports whether a request in status will not change again.
func IsTerminal(status string) bool {
	switch status {
	case StatusConfirmed, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// RelayRequest is one intent submitted to the relay API.
type RelayRequest struct {
	gorm.Model
	RequestID          string `gorm:"uniqueIndex;not null"` // Public identifier returned to the client
	UserAddress        string `gorm:"index;not null"`       // Lowercase hex
	ContractAddress    string `gorm:"not null"`             // Lowercase hex
	FunctionName       string `gorm:"not null"`
	Args               []byte // Raw JSON-encoded call arguments
	RelayAuthSignature string // 0x-prefixed hex
	RelayNonce         uint64
	Status             string `gorm:"index;not null"`
	SignerAddress      string // Relayer account that submitted (empty until submitted)
	TxHash             string `gorm:"index"` // Empty until submitted
	ErrorMsg           string `gorm:"type:text"`
}

// RelayNonce marks a relay nonce as spent by a user. The unique index is the
// durable replay guard.
type RelayNonce struct {
	gorm.Model
	UserAddress string `gorm:"uniqueIndex:idx_user_nonce;not null"`
	Nonce       uint64 `gorm:"uniqueIndex:idx_user_nonce;not null"`
	RequestID   string `gorm:"index"`
}
