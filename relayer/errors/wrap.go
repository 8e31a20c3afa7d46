package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapRelayError wraps an error as a RelayError if it isn't already one
func WrapRelayError(err error, code ErrorCode, request, message string) *RelayError {
	if err == nil {
		return nil
	}

	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		relayErr.WithContext("wrapped_message", message)
		if request != "" && relayErr.Request == "" {
			relayErr.Request = request
		}
		return relayErr
	}

	return NewRelayError(code, request, message, err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsRelayError checks if an error is a RelayError with specific code
func IsRelayError(err error, code ErrorCode) bool {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Code == code
	}
	return false
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"too many requests",
	"rate limit",
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// StageOf reports the request outcome err implies. Errors that are not
// RelayErrors never reached the chain.
func StageOf(err error) Stage {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Stage()
	}
	return StageRejected
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.Severity
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "panic"), strings.Contains(errStr, "fatal"):
		return SeverityCritical
	case strings.Contains(errStr, "failed"), strings.Contains(errStr, "error"):
		return SeverityHigh
	case strings.Contains(errStr, "warning"):
		return SeverityMedium
	}
	return SeverityLow
}
