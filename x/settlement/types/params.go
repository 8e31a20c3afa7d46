package types

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Params configures the simulated settlement engine.
type Params struct {
	// InstanceID is embedded in every payment message. Zero leaves the engine
	// unconfigured and every payment fails.
	InstanceID uint64 `json:"instance_id"`

	// RewardAmount is minted to executors per rewarded action.
	RewardAmount math.Int `json:"reward_amount"`
}

// DefaultParams returns default module parameters.
func DefaultParams() Params {
	return Params{
		InstanceID:   1,
		RewardAmount: math.NewInt(1_000_000_000_000),
	}
}

// Stringer method for Params.
func (p Params) String() string {
	bz, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}

	return string(bz)
}

// Validate does the sanity check on the params.
func (p Params) Validate() error {
	if p.RewardAmount.IsNil() || p.RewardAmount.IsNegative() {
		return errorsmod.Wrap(ErrInvalidParams, "reward amount must be non-negative")
	}
	return nil
}
