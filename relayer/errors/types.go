package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed or disallowed requests
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeSignature indicates a relay authorization that does not recover to the user
	ErrCodeSignature ErrorCode = "SIGNATURE"

	// ErrCodeReplay indicates a relay nonce the user already spent
	ErrCodeReplay ErrorCode = "REPLAY"

	// ErrCodeDatabase indicates database operation errors
	ErrCodeDatabase ErrorCode = "DATABASE"

	// ErrCodeSigner indicates no signer could take the submission
	ErrCodeSigner ErrorCode = "SIGNER"

	// ErrCodeSubmission indicates the transaction could not be sent
	ErrCodeSubmission ErrorCode = "SUBMISSION"

	// ErrCodeReverted indicates the transaction was mined and reverted
	ErrCodeReverted ErrorCode = "REVERTED"

	// ErrCodeRPC indicates RPC-related errors
	ErrCodeRPC ErrorCode = "RPC"

	// ErrCodeTimeout indicates a submission that was not confirmed in time
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeUnknownOutcome indicates a send that failed in a way that leaves
	// open whether the node accepted the transaction
	ErrCodeUnknownOutcome ErrorCode = "UNKNOWN_OUTCOME"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeInternal indicates internal system errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Stage says how far a request got before it failed. Retry safety depends on it.
type Stage string

const (
	// StageRejected: never submitted, safe to fix and retry.
	StageRejected Stage = "rejected"

	// StageFailed: submitted and reverted on-chain. A retry needs fresh registry nonces.
	StageFailed Stage = "failed"

	// StagePending: submitted, outcome unknown. Check the transaction before retrying.
	StagePending Stage = "pending"
)

// RelayError is an error raised while handling one relay request.
type RelayError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Request  string                 `json:"request,omitempty"`
	Severity Severity               `json:"severity"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// NewRelayError creates a new RelayError
func NewRelayError(code ErrorCode, request, message string, cause error) *RelayError {
	return &RelayError{
		Code:     code,
		Message:  message,
		Request:  request,
		Severity: determineSeverity(code),
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *RelayError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Request != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Request, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause
func (e *RelayError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *RelayError) WithContext(key string, value interface{}) *RelayError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the default severity
func (e *RelayError) WithSeverity(severity Severity) *RelayError {
	e.Severity = severity
	return e
}

// IsRetryable returns true if the error is retryable
func (e *RelayError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRPC, ErrCodeSigner:
		return true
	case ErrCodeDatabase:
		return e.Severity != SeverityCritical
	default:
		return false
	}
}

// Stage maps the error onto the request outcome it implies.
func (e *RelayError) Stage() Stage {
	switch e.Code {
	case ErrCodeReverted:
		return StageFailed
	case ErrCodeTimeout, ErrCodeUnknownOutcome:
		return StagePending
	default:
		return StageRejected
	}
}

// determineSeverity determines the default severity based on error code
func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeDatabase, ErrCodeConfig, ErrCodeUnknownOutcome:
		return SeverityHigh
	case ErrCodeSubmission, ErrCodeRPC, ErrCodeTimeout, ErrCodeSigner:
		return SeverityMedium
	case ErrCodeValidation, ErrCodeSignature, ErrCodeReplay, ErrCodeReverted:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Common error constructors

// NewValidationError creates a validation error
func NewValidationError(request, message string) *RelayError {
	return NewRelayError(ErrCodeValidation, request, message, nil)
}

// NewSignatureError creates a relay authorization error
func NewSignatureError(request, message string) *RelayError {
	return NewRelayError(ErrCodeSignature, request, message, nil)
}

// NewReplayError creates a replayed-nonce error
func NewReplayError(request, message string) *RelayError {
	return NewRelayError(ErrCodeReplay, request, message, nil)
}

// NewDatabaseError creates a database error
func NewDatabaseError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeDatabase, request, message, cause)
}

// NewSignerError creates a signer availability error
func NewSignerError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeSigner, request, message, cause)
}

// NewSubmissionError creates a submission error
func NewSubmissionError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeSubmission, request, message, cause)
}

// NewRevertedError creates an on-chain revert error
func NewRevertedError(request, message string) *RelayError {
	return NewRelayError(ErrCodeReverted, request, message, nil)
}

// NewRPCError creates an RPC error
func NewRPCError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeRPC, request, message, cause)
}

// NewTimeoutError creates a confirmation timeout error
func NewTimeoutError(request, message string) *RelayError {
	return NewRelayError(ErrCodeTimeout, request, message, nil)
}

// NewUnknownOutcomeError creates an error for a send that may have reached the chain
func NewUnknownOutcomeError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeUnknownOutcome, request, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *RelayError {
	return NewRelayError(ErrCodeConfig, "", message, nil)
}

// NewInternalError creates an internal error
func NewInternalError(request, message string, cause error) *RelayError {
	return NewRelayError(ErrCodeInternal, request, message, cause)
}
