package errors

import (
	"context"
	"math"
	"time"
)

// RetryPolicy bounds how often a relay submission is retried.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Attempt is one submission try, numbered from 1.
type Attempt func(attempt int) error

// RetrySubmission runs fn until it succeeds or fails in a way that must not be
// retried. Only retryable errors from requests that never reached the chain
// are tried again; anything that may have been broadcast is returned as is.
// The returned RelayError carries the number of attempts made.
func RetrySubmission(ctx context.Context, policy RetryPolicy, fn Attempt) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	attempt := 1
	for ; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return withAttempts(lastErr, attempt-1)
			}
			return err
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !CanResubmit(err) || attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return withAttempts(lastErr, attempt)
		case <-time.After(ExponentialBackoff(attempt, policy.InitialDelay, policy.MaxDelay)):
		}
	}

	return withAttempts(lastErr, attempt)
}

// CanResubmit reports whether err is transient and left nothing on chain.
func CanResubmit(err error) bool {
	return StageOf(err) == StageRejected && IsRetryable(err)
}

func withAttempts(err error, attempts int) error {
	var relayErr *RelayError
	if As(err, &relayErr) {
		relayErr.WithContext("attempts", attempts)
	}
	return err
}

// ExponentialBackoff calculates exponential backoff delay
func ExponentialBackoff(attempt int, baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return baseDelay
	}

	delay := baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
