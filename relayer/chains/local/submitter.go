// Package local submits registry calls to an in-process devnet ledger.
package local

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/keys"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

const backendName = "local"

// Submitter implements chains.Submitter on top of an *app.App. Every call is
// mined as its own block, so receipts are available as soon as Submit returns.
type Submitter struct {
	ledger *app.App
	logger zerolog.Logger
}

var _ chains.Submitter = (*Submitter)(nil)

// NewSubmitter wraps ledger. Close closes the ledger.
func NewSubmitter(ledger *app.App, logger zerolog.Logger) *Submitter {
	return &Submitter{
		ledger: ledger,
		logger: logger.With().Str("component", "local_submitter").Logger(),
	}
}

func (s *Submitter) Name() string { return backendName }

func (s *Submitter) ContractAddress() ethcommon.Address { return s.ledger.Registry() }

// Submit delivers data from the signer's account. A reverted call is still
// mined and its hash returned; the outcome is in the receipt.
func (s *Submitter) Submit(ctx context.Context, signer *keys.Signer, data []byte) (ethcommon.Hash, error) {
	receipt, err := s.ledger.Deliver(ctx, app.Tx{From: signer.Address(), Data: data})
	if receipt.TxHash == (ethcommon.Hash{}) {
		if err == nil {
			err = errors.New("ledger returned no receipt")
		}
		return ethcommon.Hash{}, fmt.Errorf("failed to deliver transaction: %w", err)
	}

	log := s.logger.Debug().
		Str("signer", signer.Address().Hex()).
		Str("tx_hash", receipt.TxHash.Hex()).
		Int64("height", receipt.Height)
	if err != nil {
		log.Str("revert_reason", err.Error()).Msg("transaction reverted")
	} else {
		log.Msg("transaction mined")
	}
	return receipt.TxHash, nil
}

func (s *Submitter) Receipt(ctx context.Context, hash ethcommon.Hash) (*chains.Receipt, error) {
	r, err := s.ledger.GetReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, app.ErrReceiptNotFound) {
			return nil, chains.ErrReceiptNotFound
		}
		return nil, err
	}
	return &chains.Receipt{
		TxHash:       r.TxHash,
		Status:       r.Status,
		BlockNumber:  uint64(r.Height),
		RevertReason: r.Error,
	}, nil
}

// TransactionKnown reports whether hash was mined. The ledger has no mempool.
func (s *Submitter) TransactionKnown(ctx context.Context, hash ethcommon.Hash) (bool, error) {
	_, err := s.ledger.GetReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, app.ErrReceiptNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Balance is account's native-token balance in the settlement engine.
func (s *Submitter) Balance(ctx context.Context, account ethcommon.Address) (*big.Int, error) {
	var balance *big.Int
	err := s.ledger.View(ctx, func(ctx sdk.Context) error {
		amount, err := s.ledger.SettlementKeeper.Balance(ctx, account, nstypes.NativeToken)
		if err != nil {
			return err
		}
		balance = amount.BigInt()
		return nil
	})
	return balance, err
}

func (s *Submitter) IsHealthy(context.Context) bool {
	return s.ledger.Height() > 0
}

func (s *Submitter) Close() error {
	return s.ledger.Close()
}
