package types

import (
	"context"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Payment is one signed pay request handed to the settlement engine. The
// registry does not interpret Signature.
type Payment struct {
	From        ethcommon.Address
	To          ethcommon.Address
	Token       ethcommon.Address
	Amount      math.Int
	PriorityFee math.Int
	Nonce       uint64
	Async       bool
	Executor    ethcommon.Address
	Signature   []byte
}

// SettlementEngine defines the expected interface of the external payment
// engine.
type SettlementEngine interface {
	// Pay executes a signed payment. caller is the account invoking pay.
	Pay(ctx context.Context, caller ethcommon.Address, payment Payment) error
	// GetInstanceID returns the engine deployment ID; zero means unconfigured.
	GetInstanceID(ctx context.Context) uint64
	// IsIncentiveEligible reports whether account earns relay incentives.
	IsIncentiveEligible(ctx context.Context, account ethcommon.Address) bool
	// RewardAmount is the protocol-wide reward per executed action.
	RewardAmount(ctx context.Context) math.Int
	// Disburse pays a protocol-funded reward plus extra from the payer's balance.
	Disburse(ctx context.Context, payer, to, token ethcommon.Address, reward, extra math.Int) error
	// Transfer moves an unsigned balance owned by from, used for native value.
	Transfer(ctx context.Context, from, to, token ethcommon.Address, amount math.Int) error
}
