package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	for _, s := range []string{StatusConfirmed, StatusRejected, StatusFailed} {
		assert.True(t, IsTerminal(s), s)
	}
	for _, s := range []string{StatusReceived, StatusValidated, StatusSubmitted, StatusPending} {
		assert.False(t, IsTerminal(s), s)
	}
}
