// Package evm submits registry calls to an EVM deployment over JSON-RPC.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/keys"
)

const backendName = "evm"

// Submitter implements chains.Submitter against an EVM registry contract.
type Submitter struct {
	rpc      *RPCClient
	contract ethcommon.Address
	chainID  *big.Int
	gasLimit uint64 // zero means estimate per call
	logger   zerolog.Logger
}

var _ chains.Submitter = (*Submitter)(nil)

// NewSubmitter creates a Submitter that sends transactions for chainID to contract.
func NewSubmitter(rpc *RPCClient, contract ethcommon.Address, chainID int64, gasLimit uint64, logger zerolog.Logger) *Submitter {
	return &Submitter{
		rpc:      rpc,
		contract: contract,
		chainID:  big.NewInt(chainID),
		gasLimit: gasLimit,
		logger:   logger.With().Str("component", "evm_submitter").Logger(),
	}
}

func (s *Submitter) Name() string { return backendName }

func (s *Submitter) ContractAddress() ethcommon.Address { return s.contract }

// Submit builds a legacy transaction calling the registry with data, signs
// it with EIP-155 and broadcasts it.
func (s *Submitter) Submit(ctx context.Context, signer *keys.Signer, data []byte) (ethcommon.Hash, error) {
	from := signer.Address()

	nonce, err := signer.NextNonce(func() (uint64, error) {
		return s.rpc.GetPendingNonce(ctx, from)
	})
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := s.rpc.GetGasPrice(ctx)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := s.gasLimit
	if gasLimit == 0 {
		gasLimit, err = s.rpc.EstimateGas(ctx, ethereum.CallMsg{
			From:     from,
			To:       &s.contract,
			GasPrice: gasPrice,
			Data:     data,
		})
		if err != nil {
			if isRevert(err) {
				return ethcommon.Hash{}, fmt.Errorf("%w: %v", chains.ErrWouldRevert, err)
			}
			return ethcommon.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &s.contract,
		Value:    big.NewInt(0),
		Data:     data,
	})

	signed, err := signer.SignTx(tx, s.chainID)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	hash := signed.Hash()

	log := s.logger.With().
		Str("signer", from.Hex()).
		Uint64("nonce", nonce).
		Str("tx_hash", hash.Hex()).
		Logger()

	if sendErr := s.rpc.SendTransaction(ctx, signed); sendErr != nil {
		// the node may have accepted the transaction even though the call failed
		known, lookupErr := s.TransactionKnown(ctx, hash)
		if lookupErr != nil {
			// refetch the nonce next time; the node's pending count settles it
			signer.ResetNonce()
			log.Error().Err(sendErr).AnErr("lookup_error", lookupErr).Msg("send failed and transaction state is unknown")
			return hash, fmt.Errorf("%w: send: %v, lookup: %v", chains.ErrOutcomeUnknown, sendErr, lookupErr)
		}
		if known {
			log.Warn().Err(sendErr).Msg("send reported an error but transaction is known")
			signer.ConfirmNonce(nonce)
			return hash, nil
		}
		signer.ResetNonce()
		log.Error().Err(sendErr).Msg("failed to send transaction")
		return ethcommon.Hash{}, fmt.Errorf("failed to send transaction: %w", sendErr)
	}

	signer.ConfirmNonce(nonce)
	log.Debug().Uint64("gas_limit", gasLimit).Msg("transaction sent")
	return hash, nil
}

func (s *Submitter) Receipt(ctx context.Context, hash ethcommon.Hash) (*chains.Receipt, error) {
	receipt, err := s.rpc.GetTransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, chains.ErrReceiptNotFound
		}
		return nil, err
	}
	if receipt == nil {
		return nil, chains.ErrReceiptNotFound
	}

	out := &chains.Receipt{
		TxHash: hash,
		Status: receipt.Status,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status == types.ReceiptStatusFailed {
		out.RevertReason = "execution reverted"
	}
	return out, nil
}

func (s *Submitter) TransactionKnown(ctx context.Context, hash ethcommon.Hash) (bool, error) {
	tx, _, err := s.rpc.GetTransaction(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, err
	}
	return tx != nil, nil
}

func (s *Submitter) Balance(ctx context.Context, account ethcommon.Address) (*big.Int, error) {
	return s.rpc.GetBalance(ctx, account)
}

func (s *Submitter) IsHealthy(ctx context.Context) bool {
	return s.rpc.IsHealthy(ctx)
}

func (s *Submitter) Close() error {
	s.rpc.Close()
	return nil
}

// isRevert reports whether an RPC error is an execution revert rather than a
// transport or node failure.
func isRevert(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert")
}
