package types

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	Day  uint64 = 24 * 60 * 60
	Year uint64 = 365 * Day

	// BpsDenominator is the denominator of RelayRewardBps.
	BpsDenominator uint32 = 10_000
)

var (
	// NativeToken identifies the ledger's native currency in the settlement engine.
	NativeToken = ethcommon.Address{}

	// DefaultFeeToken is the settlement token gasless payments are made in.
	DefaultFeeToken = ethcommon.HexToAddress("0x0000000000000000000000000000000000000001")
)

// Params is the admin-owned, versioned configuration of the registry. Every
// operation reads it once and passes it down explicitly.
type Params struct {
	Version uint64 `json:"version"`

	TLD      string            `json:"tld"`
	BaseFee  math.Int          `json:"base_fee"`
	FeeToken ethcommon.Address `json:"fee_token"`

	// Names of at most ShortNameThreshold characters pay ShortNameMultiplier times the base fee.
	ShortNameThreshold  uint32 `json:"short_name_threshold"`
	ShortNameMultiplier uint64 `json:"short_name_multiplier"`

	MinNameLength uint32 `json:"min_name_length"`
	MaxNameLength uint32 `json:"max_name_length"`

	// Durations are in seconds.
	MinDuration uint64 `json:"min_duration"`
	MaxDuration uint64 `json:"max_duration"`
	UnitPeriod  uint64 `json:"unit_period"`

	RelayRewardBps uint32 `json:"relay_reward_bps"`
	GaslessEnabled bool   `json:"gasless_enabled"`
}

// DefaultParams returns default module parameters.
func DefaultParams() Params {
	return Params{
		Version:             1,
		TLD:                 DefaultTLD,
		BaseFee:             math.NewInt(1_000_000_000_000_000),
		FeeToken:            DefaultFeeToken,
		ShortNameThreshold:  4,
		ShortNameMultiplier: 10,
		MinNameLength:       3,
		MaxNameLength:       63,
		MinDuration:         30 * Day,
		MaxDuration:         10 * Year,
		UnitPeriod:          Year,
		RelayRewardBps:      5000,
		GaslessEnabled:      true,
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
	if p.TLD == "" {
		return errorsmod.Wrap(ErrInvalidParams, "tld cannot be empty")
	}
	if err := validateLabel(p.TLD, 1, 63); err != nil {
		return errorsmod.Wrapf(ErrInvalidParams, "tld: %s", err)
	}
	if p.BaseFee.IsNil() || p.BaseFee.IsNegative() {
		return errorsmod.Wrap(ErrInvalidParams, "base fee must be non-negative")
	}
	if p.ShortNameMultiplier == 0 {
		return errorsmod.Wrap(ErrInvalidParams, "short name multiplier must be positive")
	}
	if p.MinNameLength == 0 || p.MinNameLength > p.MaxNameLength {
		return errorsmod.Wrapf(ErrInvalidParams, "name length bounds [%d, %d] are invalid", p.MinNameLength, p.MaxNameLength)
	}
	if p.MinDuration == 0 || p.MinDuration > p.MaxDuration {
		return errorsmod.Wrapf(ErrInvalidParams, "duration bounds [%d, %d] are invalid", p.MinDuration, p.MaxDuration)
	}
	if p.UnitPeriod == 0 {
		return errorsmod.Wrap(ErrInvalidParams, "unit period must be positive")
	}
	if p.RelayRewardBps > BpsDenominator {
		return errorsmod.Wrapf(ErrInvalidParams, "relay reward bps %d exceeds %d", p.RelayRewardBps, BpsDenominator)
	}
	return nil
}

// ValidateDuration checks a registration or renewal period against the bounds.
func (p Params) ValidateDuration(duration uint64) error {
	if duration < p.MinDuration || duration > p.MaxDuration {
		return errorsmod.Wrapf(ErrInvalidDuration, "%d not in [%d, %d]", duration, p.MinDuration, p.MaxDuration)
	}
	return nil
}

// ValidateName checks a label against the configured length bounds and the
// allowed character set.
func (p Params) ValidateName(name string) error {
	if err := validateLabel(name, int(p.MinNameLength), int(p.MaxNameLength)); err != nil {
		return errorsmod.Wrapf(ErrInvalidName, "%q: %s", name, err)
	}
	return nil
}

// validateLabel accepts [a-z0-9] with internal hyphens only.
func validateLabel(label string, minLen, maxLen int) error {
	if len(label) < minLen || len(label) > maxLen {
		return fmt.Errorf("length %d not in [%d, %d]", len(label), minLen, maxLen)
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-':
			if i == 0 || i == len(label)-1 {
				return fmt.Errorf("leading or trailing hyphen")
			}
		default:
			return fmt.Errorf("character %q not allowed", c)
		}
	}
	return nil
}
