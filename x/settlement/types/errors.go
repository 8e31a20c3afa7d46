package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Error codes for the settlement module
const (
	BaseErrorCode uint32 = 1
)

var (
	ErrNotConfigured       = errorsmod.Register(ModuleName, BaseErrorCode+1, "settlement instance not configured")
	ErrInvalidSignature    = errorsmod.Register(ModuleName, BaseErrorCode+2, "invalid payment signature")
	ErrExecutorMismatch    = errorsmod.Register(ModuleName, BaseErrorCode+3, "executor mismatch")
	ErrInvalidNonce        = errorsmod.Register(ModuleName, BaseErrorCode+4, "invalid payment nonce")
	ErrInsufficientBalance = errorsmod.Register(ModuleName, BaseErrorCode+5, "insufficient balance")
	ErrInvalidAmount       = errorsmod.Register(ModuleName, BaseErrorCode+6, "invalid amount")
	ErrUnauthorized        = errorsmod.Register(ModuleName, BaseErrorCode+7, "unauthorized")
	ErrInvalidParams       = errorsmod.Register(ModuleName, BaseErrorCode+8, "invalid params")
)
