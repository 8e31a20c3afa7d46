package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayError(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewRPCError("req-1", "send failed", cause)

	assert.Equal(t, "[req-1:RPC] send failed: dial tcp: connection refused", err.Error())
	assert.Equal(t, SeverityMedium, err.Severity)
	assert.True(t, err.IsRetryable())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StageRejected, err.Stage())

	noRequest := NewConfigError("no signers")
	assert.Equal(t, "[CONFIG] no signers", noRequest.Error())
	assert.Equal(t, SeverityHigh, noRequest.Severity)
}

func TestStages(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		stage Stage
	}{
		{"validation", NewValidationError("r", "bad args"), StageRejected},
		{"signature", NewSignatureError("r", "bad sig"), StageRejected},
		{"replay", NewReplayError("r", "seen"), StageRejected},
		{"reverted", NewRevertedError("r", "nonce already used"), StageFailed},
		{"timeout", NewTimeoutError("r", "not mined"), StagePending},
		{"unknown outcome", NewUnknownOutcomeError("r", "send failed", nil), StagePending},
		{"wrapped revert", fmt.Errorf("relay: %w", NewRevertedError("r", "x")), StageFailed},
		{"plain error", stderrors.New("boom"), StageRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.stage, StageOf(tc.err))
		})
	}
}

func TestWrapRelayError(t *testing.T) {
	assert.Nil(t, WrapRelayError(nil, ErrCodeInternal, "", "x"))

	plain := WrapRelayError(stderrors.New("disk full"), ErrCodeDatabase, "req-2", "save")
	assert.Equal(t, ErrCodeDatabase, plain.Code)
	assert.Equal(t, "req-2", plain.Request)

	existing := NewReplayError("", "seen")
	wrapped := WrapRelayError(existing, ErrCodeInternal, "req-3", "outer")
	assert.Same(t, existing, wrapped)
	assert.Equal(t, ErrCodeReplay, wrapped.Code)
	assert.Equal(t, "req-3", wrapped.Request)
	assert.Equal(t, "outer", wrapped.Context["wrapped_message"])

	assert.True(t, IsRelayError(fmt.Errorf("x: %w", existing), ErrCodeReplay))
	assert.False(t, IsRelayError(existing, ErrCodeRPC))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(stderrors.New("429 Too Many Requests")))
	assert.True(t, IsRetryable(stderrors.New("i/o Timeout")))
	assert.False(t, IsRetryable(stderrors.New("execution reverted")))
	assert.False(t, IsRetryable(NewRevertedError("", "x")))
	assert.True(t, IsRetryable(NewDatabaseError("", "locked", nil)))
	assert.False(t, IsRetryable(NewDatabaseError("", "corrupt", nil).WithSeverity(SeverityCritical)))
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, SeverityInfo, GetSeverity(nil))
	assert.Equal(t, SeverityCritical, GetSeverity(stderrors.New("panic: nil map")))
	assert.Equal(t, SeverityHigh, GetSeverity(stderrors.New("request failed")))
	assert.Equal(t, SeverityLow, GetSeverity(stderrors.New("odd")))
	assert.Equal(t, SeverityCritical, GetSeverity(NewInternalError("", "x", nil)))
}

func TestRetrySubmission(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}

	t.Run("succeeds after retryable failures", func(t *testing.T) {
		var seen []int
		err := RetrySubmission(context.Background(), policy, func(attempt int) error {
			seen = append(seen, attempt)
			if attempt < 3 {
				return NewRPCError("", "flaky", nil)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("stops on non-retryable", func(t *testing.T) {
		calls := 0
		err := RetrySubmission(context.Background(), policy, func(int) error {
			calls++
			return NewRevertedError("", "reverted")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, IsRelayError(err, ErrCodeReverted))
	})

	t.Run("never resends an unknown outcome", func(t *testing.T) {
		calls := 0
		err := RetrySubmission(context.Background(), policy, func(int) error {
			calls++
			return NewUnknownOutcomeError("", "send failed", stderrors.New("i/o timeout"))
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, StagePending, StageOf(err))
	})

	t.Run("returns the last error after max attempts", func(t *testing.T) {
		calls := 0
		err := RetrySubmission(context.Background(), policy, func(int) error {
			calls++
			return NewSignerError("", "all signers busy", nil)
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		var relayErr *RelayError
		require.True(t, As(err, &relayErr))
		assert.Equal(t, ErrCodeSigner, relayErr.Code)
		assert.Equal(t, 3, relayErr.Context["attempts"])
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := RetrySubmission(ctx, policy, func(int) error {
			calls++
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}

func TestCanResubmit(t *testing.T) {
	assert.True(t, CanResubmit(NewRPCError("", "dial", nil)))
	assert.True(t, CanResubmit(stderrors.New("connection reset by peer")))
	assert.False(t, CanResubmit(NewSubmissionError("", "would revert", nil)))
	assert.False(t, CanResubmit(NewUnknownOutcomeError("", "send failed", nil)))
	assert.False(t, CanResubmit(NewTimeoutError("", "not mined")))
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, ExponentialBackoff(0, time.Second, time.Minute))
	assert.Equal(t, time.Second, ExponentialBackoff(1, time.Second, time.Minute))
	assert.Equal(t, 4*time.Second, ExponentialBackoff(3, time.Second, time.Minute))
	assert.Equal(t, time.Minute, ExponentialBackoff(10, time.Second, time.Minute))
}
