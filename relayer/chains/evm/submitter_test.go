package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/keys"
)

const testChainID = 31337

var testContract = ethcommon.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func newTestSigner(t *testing.T) *keys.Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	pool, err := keys.NewPool([]*ecdsa.PrivateKey{key})
	require.NoError(t, err)
	s, err := pool.Acquire(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Release(s) })
	return s
}

func newTestSubmitter(gasLimit uint64, clients ...EthClient) *Submitter {
	rpc := NewRPCClientFromClients(clients, zerolog.Nop())
	return NewSubmitter(rpc, testContract, testChainID, gasLimit, zerolog.Nop())
}

func TestSubmitSignsAndTracksNonce(t *testing.T) {
	client := new(mockEthClient)
	signer := newTestSigner(t)
	sub := newTestSubmitter(0, client)

	var sent []*types.Transaction
	client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(7), nil).Once()
	client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1_000_000_000), nil)
	client.On("EstimateGas", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.From == signer.Address() && *msg.To == testContract
	})).Return(uint64(90_000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).(*types.Transaction)) }).
		Return(nil)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	h1, err := sub.Submit(context.Background(), signer, data)
	require.NoError(t, err)
	h2, err := sub.Submit(context.Background(), signer, data)
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, h1, sent[0].Hash())
	assert.Equal(t, h2, sent[1].Hash())
	assert.Equal(t, uint64(7), sent[0].Nonce())
	assert.Equal(t, uint64(8), sent[1].Nonce(), "second nonce is tracked locally")
	assert.Equal(t, uint64(90_000), sent[0].Gas())
	assert.Equal(t, data, sent[0].Data())

	from, err := types.Sender(types.NewEIP155Signer(big.NewInt(testChainID)), sent[0])
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)

	client.AssertNumberOfCalls(t, "PendingNonceAt", 1)
}

func TestSubmitFixedGasLimitSkipsEstimate(t *testing.T) {
	client := new(mockEthClient)
	signer := newTestSigner(t)
	sub := newTestSubmitter(250_000, client)

	client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(0), nil)
	client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
	client.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
		return tx.Gas() == 250_000
	})).Return(nil)

	_, err := sub.Submit(context.Background(), signer, []byte{1})
	require.NoError(t, err)
	client.AssertNotCalled(t, "EstimateGas", mock.Anything, mock.Anything)
}

func TestSubmitRevertingCallIsNotSent(t *testing.T) {
	client := new(mockEthClient)
	signer := newTestSigner(t)
	sub := newTestSubmitter(0, client)

	client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(0), nil)
	client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(0), errors.New("execution reverted: nonce already used"))

	_, err := sub.Submit(context.Background(), signer, []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, chains.ErrWouldRevert)
	client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestSubmitAmbiguousSend(t *testing.T) {
	t.Run("known transaction counts as sent", func(t *testing.T) {
		client := new(mockEthClient)
		signer := newTestSigner(t)
		sub := newTestSubmitter(21_000, client)

		client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(3), nil).Once()
		client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
		client.On("SendTransaction", mock.Anything, mock.Anything).Return(errors.New("i/o timeout")).Once()
		client.On("TransactionByHash", mock.Anything, mock.Anything).Return(new(types.Transaction), true, nil)

		hash, err := sub.Submit(context.Background(), signer, []byte{1})
		require.NoError(t, err)
		assert.NotEqual(t, ethcommon.Hash{}, hash)

		n, err := signer.NextNonce(func() (uint64, error) { return 0, errors.New("unexpected fetch") })
		require.NoError(t, err)
		assert.Equal(t, uint64(4), n)
	})

	t.Run("unknown transaction resets the nonce", func(t *testing.T) {
		client := new(mockEthClient)
		signer := newTestSigner(t)
		sub := newTestSubmitter(21_000, client)

		client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(3), nil)
		client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
		client.On("SendTransaction", mock.Anything, mock.Anything).Return(errors.New("nonce too low"))
		client.On("TransactionByHash", mock.Anything, mock.Anything).Return(nil, false, ethereum.NotFound)

		_, err := sub.Submit(context.Background(), signer, []byte{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nonce too low")

		_, _ = sub.Submit(context.Background(), signer, []byte{1})
		client.AssertNumberOfCalls(t, "PendingNonceAt", 2)
	})

	t.Run("failed lookup reports an unknown outcome", func(t *testing.T) {
		client := new(mockEthClient)
		signer := newTestSigner(t)
		sub := newTestSubmitter(21_000, client)

		var sent []uint64
		client.On("PendingNonceAt", mock.Anything, signer.Address()).Return(uint64(3), nil)
		client.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(1), nil)
		client.On("SendTransaction", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).(*types.Transaction).Nonce()) }).
			Return(errors.New("i/o timeout")).Once()
		client.On("TransactionByHash", mock.Anything, mock.Anything).Return(nil, false, errors.New("i/o timeout"))

		hash, err := sub.Submit(context.Background(), signer, []byte{1})
		require.ErrorIs(t, err, chains.ErrOutcomeUnknown)
		assert.NotEqual(t, ethcommon.Hash{}, hash)
		assert.Equal(t, []uint64{3}, sent)

		// the nonce is refetched rather than assumed consumed or free
		n, err := signer.NextNonce(func() (uint64, error) { return 4, nil })
		require.NoError(t, err)
		assert.Equal(t, uint64(4), n)
	})
}

func TestReceipt(t *testing.T) {
	client := new(mockEthClient)
	sub := newTestSubmitter(0, client)

	mined := ethcommon.HexToHash("0x01")
	reverted := ethcommon.HexToHash("0x02")
	pending := ethcommon.HexToHash("0x03")

	client.On("TransactionReceipt", mock.Anything, mined).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(12)}, nil)
	client.On("TransactionReceipt", mock.Anything, reverted).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(13)}, nil)
	client.On("TransactionReceipt", mock.Anything, pending).Return(nil, ethereum.NotFound)

	r, err := sub.Receipt(context.Background(), mined)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, uint64(12), r.BlockNumber)
	assert.Equal(t, mined, r.TxHash)

	r, err = sub.Receipt(context.Background(), reverted)
	require.NoError(t, err)
	assert.False(t, r.Succeeded())
	assert.NotEmpty(t, r.RevertReason)

	_, err = sub.Receipt(context.Background(), pending)
	assert.ErrorIs(t, err, chains.ErrReceiptNotFound)
	client.AssertNumberOfCalls(t, "TransactionReceipt", 3)
}

func TestRPCFailover(t *testing.T) {
	bad := new(mockEthClient)
	good := new(mockEthClient)
	bad.On("BlockNumber", mock.Anything).Return(uint64(0), errors.New("connection refused"))
	good.On("BlockNumber", mock.Anything).Return(uint64(55), nil)

	rpc := NewRPCClientFromClients([]EthClient{bad, good}, zerolog.Nop())
	block, err := rpc.GetLatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(55), block)
	assert.True(t, rpc.IsHealthy(context.Background()))

	down := NewRPCClientFromClients([]EthClient{bad}, zerolog.Nop())
	assert.False(t, down.IsHealthy(context.Background()))

	bad.On("Close").Return()
	good.On("Close").Return()
	rpc.Close()
	bad.AssertCalled(t, "Close")
	good.AssertCalled(t, "Close")
}

func TestBalanceAndKnown(t *testing.T) {
	client := new(mockEthClient)
	sub := newTestSubmitter(0, client)
	acct := ethcommon.HexToAddress("0xaa")

	client.On("BalanceAt", mock.Anything, acct, (*big.Int)(nil)).Return(big.NewInt(42), nil)
	bal, err := sub.Balance(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())

	missing := ethcommon.HexToHash("0xff")
	client.On("TransactionByHash", mock.Anything, missing).Return(nil, false, ethereum.NotFound)
	known, err := sub.TransactionKnown(context.Background(), missing)
	require.NoError(t, err)
	assert.False(t, known)
}
