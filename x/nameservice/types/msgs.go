package types

import (
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// ServiceAuth is the user's authorization of one registry action.
type ServiceAuth struct {
	User      ethcommon.Address
	Nonce     uint64
	Signature []byte
}

// PaymentAuth is the user's independently signed payment leg.
type PaymentAuth struct {
	PriorityFee math.Int
	Nonce       uint64
	Async       bool
	Signature   []byte
}

// MsgRegister registers Name for the caller, paid with attached native value.
type MsgRegister struct {
	Caller   ethcommon.Address
	Value    math.Int
	Name     string
	Duration uint64
	Resolver ethcommon.Address
	Metadata string
}

// MsgRegisterGasless registers Name for Auth.User, submitted by Submitter.
type MsgRegisterGasless struct {
	Submitter ethcommon.Address
	Name      string
	Duration  uint64
	Resolver  ethcommon.Address
	Metadata  string
	Amount    math.Int
	Auth      ServiceAuth
	Payment   PaymentAuth
}

// MsgRenew extends a domain owned by the caller.
type MsgRenew struct {
	Caller   ethcommon.Address
	Value    math.Int
	NameHash ethcommon.Hash
	Duration uint64
}

// MsgRenewGasless extends a domain owned by Auth.User.
type MsgRenewGasless struct {
	Submitter ethcommon.Address
	NameHash  ethcommon.Hash
	Duration  uint64
	Amount    math.Int
	Auth      ServiceAuth
	Payment   PaymentAuth
}

// MsgTransfer moves a domain owned by the caller to NewOwner.
type MsgTransfer struct {
	Caller   ethcommon.Address
	NameHash ethcommon.Hash
	NewOwner ethcommon.Address
}

// MsgTransferGasless moves a domain owned by Auth.User. It has no payment leg.
type MsgTransferGasless struct {
	Submitter ethcommon.Address
	NameHash  ethcommon.Hash
	NewOwner  ethcommon.Address
	Auth      ServiceAuth
}

// MsgSetResolver points a domain at a resolver.
type MsgSetResolver struct {
	Caller   ethcommon.Address
	NameHash ethcommon.Hash
	Resolver ethcommon.Address
}

// MsgSetMetadata replaces a domain's metadata.
type MsgSetMetadata struct {
	Caller   ethcommon.Address
	NameHash ethcommon.Hash
	Metadata string
}

// MsgUpdateParams replaces the registry configuration.
type MsgUpdateParams struct {
	Authority ethcommon.Address
	Params    Params
}

// MsgWithdrawFees moves accumulated fees out of the registry account.
type MsgWithdrawFees struct {
	Authority ethcommon.Address
	To        ethcommon.Address
	Token     ethcommon.Address
	Amount    math.Int
}
