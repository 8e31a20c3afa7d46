package local

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/keys"
	"github.com/motus-labs/motus-name-service/utils/signature"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

type testEnv struct {
	sub     *Submitter
	signer  *keys.Signer
	userKey *ecdsa.PrivateKey
	user    ethcommon.Address
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	userKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	relayKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	ledger, err := app.New(log.NewNopLogger(), ethcommon.HexToAddress("0xad"))
	require.NoError(t, err)

	user := crypto.PubkeyToAddress(userKey.PublicKey)
	gs := app.DefaultGenesis()
	funds := math.NewInt(1_000_000_000_000_000_000)
	gs.Settlement.Balances = []sttypes.Balance{
		{Account: user, Token: nstypes.DefaultFeeToken, Amount: funds},
		{Account: crypto.PubkeyToAddress(relayKey.PublicKey), Token: nstypes.NativeToken, Amount: math.NewInt(5000)},
	}
	require.NoError(t, ledger.InitChain(context.Background(), gs))

	sub := NewSubmitter(ledger, zerolog.Nop())
	t.Cleanup(func() { _ = sub.Close() })

	pool, err := keys.NewPool([]*ecdsa.PrivateKey{relayKey})
	require.NoError(t, err)
	signer, err := pool.Acquire(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Release(signer) })

	return &testEnv{sub: sub, signer: signer, userKey: userKey, user: user}
}

func (e *testEnv) registerCall(t *testing.T, name string, nonce uint64) []byte {
	t.Helper()
	p := nstypes.DefaultParams()
	amount := nstypes.RegistrationFee(p, name, nstypes.Year)
	instance := sttypes.DefaultParams().InstanceID
	registry := app.RegistryAddress()

	serviceSig, err := signature.Sign(e.userKey, signature.RegisterMessage(instance, name, nstypes.Year, amount, nonce))
	require.NoError(t, err)
	paymentSig, err := signature.Sign(e.userKey, signature.PaymentMessage(instance, registry, p.FeeToken, amount, math.ZeroInt(), nonce, true, registry))
	require.NoError(t, err)

	contract := e.sub.ledger.ABI()
	data, err := contract.Pack(nstypes.FnRegisterGasless,
		name, new(big.Int).SetUint64(nstypes.Year), ethcommon.Address{}, "",
		e.user, amount.BigInt(), new(big.Int).SetUint64(nonce), serviceSig,
		big.NewInt(0), new(big.Int).SetUint64(nonce), true, paymentSig,
	)
	require.NoError(t, err)
	return data
}

func TestSubmitAndReceipt(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	assert.Equal(t, "local", env.sub.Name())
	assert.Equal(t, app.RegistryAddress(), env.sub.ContractAddress())
	assert.True(t, env.sub.IsHealthy(ctx))

	hash, err := env.sub.Submit(ctx, env.signer, env.registerCall(t, "gerry", 1))
	require.NoError(t, err)

	known, err := env.sub.TransactionKnown(ctx, hash)
	require.NoError(t, err)
	assert.True(t, known)

	receipt, err := chains.WaitForReceipt(ctx, env.sub, hash, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, hash, receipt.TxHash)
	assert.Positive(t, receipt.BlockNumber)
}

func TestRevertedCallStillMined(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	data := env.registerCall(t, "gerry", 1)
	_, err := env.sub.Submit(ctx, env.signer, data)
	require.NoError(t, err)

	// same nonce again
	hash, err := env.sub.Submit(ctx, env.signer, data)
	require.NoError(t, err)

	receipt, err := env.sub.Receipt(ctx, hash)
	require.NoError(t, err)
	assert.False(t, receipt.Succeeded())
	assert.NotEmpty(t, receipt.RevertReason)
}

func TestUnknownHashAndBalance(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.sub.Receipt(ctx, ethcommon.HexToHash("0x1234"))
	assert.ErrorIs(t, err, chains.ErrReceiptNotFound)

	known, err := env.sub.TransactionKnown(ctx, ethcommon.HexToHash("0x1234"))
	require.NoError(t, err)
	assert.False(t, known)

	bal, err := env.sub.Balance(ctx, env.signer.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.Int64())

	bal, err = env.sub.Balance(ctx, ethcommon.HexToAddress("0xbeef"))
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
}

func TestHealthCheckDuringSubmissions(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				assert.True(t, env.sub.IsHealthy(ctx))
			}
		}
	}()

	for i := uint64(1); i <= 5; i++ {
		_, err := env.sub.Submit(ctx, env.signer, env.registerCall(t, fmt.Sprintf("gerry%d", i), i))
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
}
