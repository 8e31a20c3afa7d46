package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// EthClient is the part of *ethclient.Client the relayer uses.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash ethcommon.Hash) (*types.Transaction, bool, error)
	BalanceAt(ctx context.Context, account ethcommon.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

var _ EthClient = (*ethclient.Client)(nil)

// RPCClient spreads EVM RPC calls over several endpoints round-robin and
// fails over to the next endpoint on error.
type RPCClient struct {
	clients []EthClient
	index   uint64
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewRPCClient dials every URL and keeps the endpoints that serve expectedChainID.
func NewRPCClient(ctx context.Context, rpcURLs []string, expectedChainID int64, logger zerolog.Logger) (*RPCClient, error) {
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs provided")
	}

	log := logger.With().Str("component", "evm_rpc_client").Logger()
	clients := make([]EthClient, 0, len(rpcURLs))

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, url := range rpcURLs {
		client, err := ethclient.DialContext(dialCtx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}

		clientChainID, err := client.ChainID(dialCtx)
		if err != nil {
			log.Warn().
				Err(err).
				Str("url", url).
				Int64("expected_chain_id", expectedChainID).
				Msg("failed to verify chain ID, proceeding with client anyway")
			clients = append(clients, client)
			continue
		}

		if clientChainID.Int64() != expectedChainID {
			client.Close()
			log.Warn().
				Str("url", url).
				Int64("expected_chain_id", expectedChainID).
				Int64("actual_chain_id", clientChainID.Int64()).
				Msg("chain ID mismatch, closing client")
			continue
		}

		clients = append(clients, client)
		log.Info().Str("url", url).Msg("connected to RPC endpoint")
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("failed to connect to any valid RPC endpoints")
	}

	return NewRPCClientFromClients(clients, logger), nil
}

// NewRPCClientFromClients wraps already connected clients.
func NewRPCClientFromClients(clients []EthClient, logger zerolog.Logger) *RPCClient {
	return &RPCClient{
		clients: clients,
		logger:  logger.With().Str("component", "evm_rpc_client").Logger(),
	}
}

// executeWithFailover executes a function with round-robin failover.
// ethereum.NotFound is an answer, not an endpoint failure, and is returned as is.
func (rc *RPCClient) executeWithFailover(ctx context.Context, operation string, fn func(EthClient) error) error {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()

	if len(clients) == 0 {
		return fmt.Errorf("no RPC clients available for %s", operation)
	}

	var lastErr error
	maxAttempts := len(clients)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		index := atomic.AddUint64(&rc.index, 1) - 1
		client := clients[index%uint64(len(clients))]

		err := fn(client)
		if err == nil || errors.Is(err, ethereum.NotFound) {
			return err
		}
		lastErr = err

		rc.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}

	return fmt.Errorf("operation %s failed after trying %d endpoints: %w", operation, maxAttempts, lastErr)
}

// IsHealthy checks if any RPC in the pool is healthy by pinging it
func (rc *RPCClient) IsHealthy(ctx context.Context) bool {
	_, err := rc.GetLatestBlock(ctx)
	return err == nil
}

// GetLatestBlock returns the latest block number
func (rc *RPCClient) GetLatestBlock(ctx context.Context) (uint64, error) {
	var blockNum uint64
	err := rc.executeWithFailover(ctx, "get_block_number", func(client EthClient) error {
		var innerErr error
		blockNum, innerErr = client.BlockNumber(ctx)
		return innerErr
	})
	return blockNum, err
}

// GetGasPrice fetches the current gas price
func (rc *RPCClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	err := rc.executeWithFailover(ctx, "get_gas_price", func(client EthClient) error {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var innerErr error
		gasPrice, innerErr = client.SuggestGasPrice(callCtx)
		return innerErr
	})
	return gasPrice, err
}

// GetPendingNonce returns the next nonce for account including pending transactions.
func (rc *RPCClient) GetPendingNonce(ctx context.Context, account ethcommon.Address) (uint64, error) {
	var nonce uint64
	err := rc.executeWithFailover(ctx, "get_pending_nonce", func(client EthClient) error {
		var innerErr error
		nonce, innerErr = client.PendingNonceAt(ctx, account)
		return innerErr
	})
	return nonce, err
}

// EstimateGas simulates msg. Reverts are returned by the first endpoint
// without failover since every endpoint would agree.
func (rc *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	var revertErr error
	err := rc.executeWithFailover(ctx, "estimate_gas", func(client EthClient) error {
		var innerErr error
		gas, innerErr = client.EstimateGas(ctx, msg)
		if innerErr != nil && isRevert(innerErr) {
			revertErr = innerErr
			return nil
		}
		return innerErr
	})
	if revertErr != nil {
		return 0, revertErr
	}
	return gas, err
}

// SendTransaction broadcasts a signed transaction. It is not retried on
// another endpoint; callers resolve failures by looking the hash up.
func (rc *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()
	if len(clients) == 0 {
		return fmt.Errorf("no RPC clients available for send_transaction")
	}

	index := atomic.AddUint64(&rc.index, 1) - 1
	return clients[index%uint64(len(clients))].SendTransaction(ctx, tx)
}

// GetTransactionReceipt fetches a transaction receipt
func (rc *RPCClient) GetTransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := rc.executeWithFailover(ctx, "get_transaction_receipt", func(client EthClient) error {
		var innerErr error
		receipt, innerErr = client.TransactionReceipt(ctx, txHash)
		return innerErr
	})
	return receipt, err
}

// GetTransaction looks a transaction up by hash.
func (rc *RPCClient) GetTransaction(ctx context.Context, txHash ethcommon.Hash) (*types.Transaction, bool, error) {
	var (
		tx      *types.Transaction
		pending bool
	)
	err := rc.executeWithFailover(ctx, "get_transaction", func(client EthClient) error {
		var innerErr error
		tx, pending, innerErr = client.TransactionByHash(ctx, txHash)
		return innerErr
	})
	return tx, pending, err
}

// GetBalance returns account's latest balance.
func (rc *RPCClient) GetBalance(ctx context.Context, account ethcommon.Address) (*big.Int, error) {
	var balance *big.Int
	err := rc.executeWithFailover(ctx, "get_balance", func(client EthClient) error {
		var innerErr error
		balance, innerErr = client.BalanceAt(ctx, account, nil)
		return innerErr
	})
	return balance, err
}

// Close closes all RPC connections
func (rc *RPCClient) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for _, client := range rc.clients {
		if client != nil {
			client.Close()
		}
	}
	rc.clients = nil
}
