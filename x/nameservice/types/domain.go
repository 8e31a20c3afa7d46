package types

import (
	"encoding/json"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// DomainState is the lifecycle position of a name at a given time.
type DomainState int

const (
	// StateAvailable means no record exists for the name.
	StateAvailable DomainState = iota
	// StateActive means the record is registered and not yet expired.
	StateActive
	// StateExpired means the record exists but can be registered again.
	StateExpired
)

func (s DomainState) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// DomainRecord is one registered name. Records are never removed; expiry is
// the only end of life.
type DomainRecord struct {
	Name         string            `json:"name"`
	Owner        ethcommon.Address `json:"owner"`
	Resolver     ethcommon.Address `json:"resolver"`
	RegisteredAt int64             `json:"registered_at"`
	ExpiresAt    int64             `json:"expires_at"`
	Metadata     string            `json:"metadata"`
	Active       bool              `json:"active"`
}

// State derives the lifecycle state at now.
func (d DomainRecord) State(now time.Time) DomainState {
	if !d.Active {
		return StateAvailable
	}
	if now.Unix() >= d.ExpiresAt {
		return StateExpired
	}
	return StateActive
}

// IsExpired reports whether the record can be registered again at now.
func (d DomainRecord) IsExpired(now time.Time) bool {
	return d.State(now) != StateActive
}

// Stringer method for DomainRecord.
func (d DomainRecord) String() string {
	bz, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}

	return string(bz)
}
