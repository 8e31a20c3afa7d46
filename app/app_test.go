package app_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/utils/signature"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

var (
	authority = ethcommon.HexToAddress("0x00000000000000000000000000000000000000ad")
	submitter = ethcommon.HexToAddress("0x00000000000000000000000000000000000000cc")
	startTime = time.Unix(1_700_000_000, 0)
)

type fixture struct {
	app     *app.App
	ctx     context.Context
	now     time.Time
	userKey *ecdsa.PrivateKey
	user    ethcommon.Address
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), now: startTime}

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	f.userKey = key
	f.user = crypto.PubkeyToAddress(key.PublicKey)

	opts = append(opts, app.WithClock(func() time.Time { return f.now }))
	a, err := app.New(log.NewTestLogger(t), authority, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	f.app = a

	gs := app.DefaultGenesis()
	funds := math.NewInt(1_000_000_000_000_000_000)
	gs.Settlement.Balances = []sttypes.Balance{
		{Account: f.user, Token: nstypes.DefaultFeeToken, Amount: funds},
		{Account: f.user, Token: nstypes.NativeToken, Amount: funds},
	}
	require.NoError(t, a.InitChain(f.ctx, gs))
	return f
}

func (f *fixture) pack(t *testing.T, fn string, args ...interface{}) []byte {
	t.Helper()
	abi := f.app.ABI()
	data, err := abi.Pack(fn, args...)
	require.NoError(t, err)
	return data
}

func (f *fixture) sign(t *testing.T, message string) []byte {
	t.Helper()
	sig, err := signature.Sign(f.userKey, message)
	require.NoError(t, err)
	return sig
}

func (f *fixture) registerGasless(t *testing.T, name string, nonce uint64) []byte {
	t.Helper()
	p := nstypes.DefaultParams()
	amount := nstypes.RegistrationFee(p, name, nstypes.Year)
	instance := sttypes.DefaultParams().InstanceID
	registry := app.RegistryAddress()

	serviceSig := f.sign(t, signature.RegisterMessage(instance, name, nstypes.Year, amount, nonce))
	paymentSig := f.sign(t, signature.PaymentMessage(instance, registry, p.FeeToken, amount, math.ZeroInt(), nonce, true, registry))

	return f.pack(t, nstypes.FnRegisterGasless,
		name, new(big.Int).SetUint64(nstypes.Year), ethcommon.Address{}, "",
		f.user, amount.BigInt(), new(big.Int).SetUint64(nonce), serviceSig,
		big.NewInt(0), new(big.Int).SetUint64(nonce), true, paymentSig,
	)
}

func (f *fixture) isAvailable(t *testing.T, name string) bool {
	t.Helper()
	out, err := f.app.Call(f.ctx, f.pack(t, nstypes.FnIsAvailable, name))
	require.NoError(t, err)
	abi := f.app.ABI()
	vals, err := abi.Unpack(nstypes.FnIsAvailable, out)
	require.NoError(t, err)
	return vals[0].(bool)
}

func TestGaslessRegistrationThroughLedger(t *testing.T) {
	f := newFixture(t)
	startHeight := f.app.Height()

	data := f.registerGasless(t, "clinic1", 1)
	receipt, err := f.app.Deliver(f.ctx, app.Tx{From: submitter, Data: data})
	require.NoError(t, err)
	require.True(t, receipt.Succeeded())
	require.Equal(t, nstypes.FnRegisterGasless, receipt.Function)
	require.Equal(t, startHeight+1, f.app.Height())
	require.False(t, f.isAvailable(t, "clinic1"))

	var types []string
	for _, ev := range receipt.Events {
		types = append(types, ev.Type)
	}
	require.Contains(t, types, nstypes.EventTypeDomainRegistered)
	require.Contains(t, types, nstypes.EventTypeRelayIncentivePaid)

	stored, err := f.app.GetReceipt(f.ctx, receipt.TxHash)
	require.NoError(t, err)
	require.Equal(t, receipt.TxHash, stored.TxHash)

	// submitter earned half of the engine reward
	var reward math.Int
	require.NoError(t, f.app.View(f.ctx, func(ctx sdk.Context) error {
		reward, err = f.app.SettlementKeeper.Balance(ctx, submitter, nstypes.DefaultFeeToken)
		return err
	}))
	require.Equal(t, sttypes.DefaultParams().RewardAmount.QuoRaw(2), reward)

	t.Run("replay is committed as a failed receipt", func(t *testing.T) {
		receipt, err := f.app.Deliver(f.ctx, app.Tx{From: submitter, Data: data})
		require.ErrorIs(t, err, nstypes.ErrNonceUsed)
		require.False(t, receipt.Succeeded())
		require.Contains(t, receipt.Error, "nonce already used")

		stored, err := f.app.GetReceipt(f.ctx, receipt.TxHash)
		require.NoError(t, err)
		require.Equal(t, app.ReceiptStatusFailed, stored.Status)
	})
}

func TestDirectRegistrationWithValue(t *testing.T) {
	f := newFixture(t)
	fee := nstypes.DefaultParams().BaseFee

	data := f.pack(t, nstypes.FnRegister, "gerry", new(big.Int).SetUint64(nstypes.Year), ethcommon.Address{}, "{}")
	receipt, err := f.app.Deliver(f.ctx, app.Tx{From: f.user, Value: fee.BigInt(), Data: data})
	require.NoError(t, err)
	require.True(t, receipt.Succeeded())

	abi := f.app.ABI()
	vals, err := abi.Unpack(nstypes.FnRegister, receipt.Return)
	require.NoError(t, err)
	hash := ethcommon.Hash(vals[0].([32]byte))
	require.Equal(t, nstypes.DomainHash("gerry", nstypes.DefaultTLD), hash)

	out, err := f.app.Call(f.ctx, f.pack(t, nstypes.FnGetDomain, hash))
	require.NoError(t, err)
	vals, err = abi.Unpack(nstypes.FnGetDomain, out)
	require.NoError(t, err)
	require.Equal(t, f.user, vals[0].(ethcommon.Address))
	require.Equal(t, startTime.Unix()+int64(nstypes.Year), vals[3].(*big.Int).Int64())

	t.Run("value on a non-payable function", func(t *testing.T) {
		data := f.pack(t, nstypes.FnTransfer, hash, submitter)
		_, err := f.app.Deliver(f.ctx, app.Tx{From: f.user, Value: big.NewInt(1), Data: data})
		require.ErrorIs(t, err, app.ErrNotPayable)
	})

	t.Run("expired after a year", func(t *testing.T) {
		f.now = startTime.Add(time.Duration(nstypes.Year) * time.Second)
		require.True(t, f.isAvailable(t, "gerry"))
	})
}

func TestDeliverRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Deliver(f.ctx, app.Tx{From: submitter, Data: []byte{1, 2}})
	require.ErrorIs(t, err, app.ErrInvalidCall)

	_, err = f.app.Deliver(f.ctx, app.Tx{From: submitter, Data: []byte{0xde, 0xad, 0xbe, 0xef}})
	require.ErrorIs(t, err, app.ErrInvalidCall)

	_, err = f.app.Call(f.ctx, f.pack(t, nstypes.FnTransfer, ethcommon.Hash{}, submitter))
	require.ErrorIs(t, err, app.ErrInvalidCall)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	db, err := dbm.NewDB("ledger", dbm.GoLevelDBBackend, dir)
	require.NoError(t, err)

	f := newFixture(t, app.WithDB(db))
	receipt, err := f.app.Deliver(f.ctx, app.Tx{From: submitter, Data: f.registerGasless(t, "clinic1", 1)})
	require.NoError(t, err)
	height := f.app.Height()
	require.NoError(t, f.app.Close())

	db, err = dbm.NewDB("ledger", dbm.GoLevelDBBackend, dir)
	require.NoError(t, err)
	reopened, err := app.New(log.NewTestLogger(t), authority, app.WithDB(db), app.WithClock(func() time.Time { return startTime }))
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, height, reopened.Height())
	require.ErrorIs(t, reopened.InitChain(f.ctx, app.DefaultGenesis()), app.ErrAlreadyInitialized)

	stored, err := reopened.GetReceipt(f.ctx, receipt.TxHash)
	require.NoError(t, err)
	require.True(t, stored.Succeeded())

	gs, err := reopened.ExportGenesis(f.ctx)
	require.NoError(t, err)
	require.Len(t, gs.Nameservice.Domains, 1)
	require.Equal(t, "clinic1", gs.Nameservice.Domains[0].Record.Name)
}
