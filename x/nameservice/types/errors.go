package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Error codes for the nameservice module
const (
	BaseErrorCode uint32 = 1
)

var (
	ErrInvalidName         = errorsmod.Register(ModuleName, BaseErrorCode+1, "invalid name format")
	ErrInvalidDuration     = errorsmod.Register(ModuleName, BaseErrorCode+2, "duration out of range")
	ErrAlreadyRegistered   = errorsmod.Register(ModuleName, BaseErrorCode+3, "domain already registered")
	ErrDomainNotFound      = errorsmod.Register(ModuleName, BaseErrorCode+4, "domain not found")
	ErrInsufficientPayment = errorsmod.Register(ModuleName, BaseErrorCode+5, "insufficient payment")
	ErrDomainExpired       = errorsmod.Register(ModuleName, BaseErrorCode+6, "domain expired")
	ErrNotOwner            = errorsmod.Register(ModuleName, BaseErrorCode+7, "caller is not the domain owner")
	ErrInvalidNewOwner     = errorsmod.Register(ModuleName, BaseErrorCode+8, "invalid new owner")
	ErrNonceUsed           = errorsmod.Register(ModuleName, BaseErrorCode+9, "nonce already used")
	ErrInvalidSignature    = errorsmod.Register(ModuleName, BaseErrorCode+10, "invalid signature")
	ErrGaslessDisabled     = errorsmod.Register(ModuleName, BaseErrorCode+11, "gasless mode disabled")
	ErrPaymentFailed       = errorsmod.Register(ModuleName, BaseErrorCode+12, "payment failed")
	ErrUnauthorized        = errorsmod.Register(ModuleName, BaseErrorCode+13, "unauthorized")
	ErrInvalidParams       = errorsmod.Register(ModuleName, BaseErrorCode+14, "invalid params")
	ErrReentrantCall       = errorsmod.Register(ModuleName, BaseErrorCode+15, "reentrant call")
	ErrInvalidAddress      = errorsmod.Register(ModuleName, BaseErrorCode+16, "invalid address")
)
