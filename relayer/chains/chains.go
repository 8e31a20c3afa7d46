// Package chains defines how the relayer reaches a registry deployment and
// provides the EVM and in-process ledger backends.
package chains

import (
	"context"
	"errors"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/relayer/keys"
)

var (
	// ErrReceiptNotFound means the transaction is not mined (or not known) yet.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrWouldRevert means the call failed simulation and was never sent.
	ErrWouldRevert = errors.New("call would revert")

	// ErrOutcomeUnknown means the send failed and the backend could not tell
	// whether the transaction was accepted. Submit returns the hash with it.
	ErrOutcomeUnknown = errors.New("transaction outcome unknown")
)

// Receipt statuses, matching the EVM's.
const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Receipt is the outcome of a mined registry call.
type Receipt struct {
	TxHash      ethcommon.Hash
	Status      uint64
	BlockNumber uint64
	// RevertReason is filled when the backend can tell why the call reverted.
	RevertReason string
}

// Succeeded reports whether the call executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}

// Submitter sends registry calls from relayer signers.
type Submitter interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// ContractAddress is the registry every call targets.
	ContractAddress() ethcommon.Address

	// Submit signs and sends calldata from signer, which the caller holds
	// leased. A send whose outcome is unclear is resolved with a lookup before
	// returning; when the lookup fails too, the hash is returned along with
	// ErrOutcomeUnknown. Any other error means the transaction was not accepted.
	Submit(ctx context.Context, signer *keys.Signer, data []byte) (ethcommon.Hash, error)

	// Receipt returns the receipt of a mined transaction or ErrReceiptNotFound.
	Receipt(ctx context.Context, hash ethcommon.Hash) (*Receipt, error)

	// TransactionKnown reports whether the backend has seen the transaction,
	// mined or pending.
	TransactionKnown(ctx context.Context, hash ethcommon.Hash) (bool, error)

	// Balance is account's native balance.
	Balance(ctx context.Context, account ethcommon.Address) (*big.Int, error)

	// IsHealthy reports whether the backend answers.
	IsHealthy(ctx context.Context) bool

	Close() error
}

// WaitForReceipt polls s until the receipt of hash is available or ctx ends.
func WaitForReceipt(ctx context.Context, s Submitter, hash ethcommon.Hash, interval time.Duration) (*Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := s.Receipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrReceiptNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
