package keeper_test

import (
	"context"
	"errors"
	"testing"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

func TestRegisterGasless(t *testing.T) {
	f := SetupTest(t)
	user := newUser(t)
	p := f.params(t)
	fee := types.RegistrationFee(p, "clinic1", types.Year)
	f.engine.fund(user.addr, p.FeeToken, fee.MulRaw(3))

	msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, fee, 100)
	hash, err := f.k.RegisterGasless(f.ctx, msg)
	require.NoError(t, err)

	rec, err := f.k.GetDomain(f.ctx, hash)
	require.NoError(t, err)
	require.Equal(t, user.addr, rec.Owner, "the signing user owns the domain, not the submitter")
	require.Equal(t, `{"kind":"clinic"}`, rec.Metadata)

	used, err := f.k.IsServiceNonceUsed(f.ctx, user.addr, 100)
	require.NoError(t, err)
	require.True(t, used)

	require.Len(t, f.engine.payments, 1)
	require.Equal(t, f.registry, f.engine.payments[0].To)
	require.Equal(t, f.registry, f.engine.payments[0].Executor)
	require.True(t, f.engine.balance(f.registry, p.FeeToken).Equal(fee))

	owned, err := f.k.GetOwnedDomains(f.ctx, f.submitter)
	require.NoError(t, err)
	require.Empty(t, owned)

	t.Run("fail; identical replay", func(t *testing.T) {
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrNonceUsed)
	})

	t.Run("fail; same nonce with other params", func(t *testing.T) {
		replay := f.registerGaslessMsg(t, user, "clinic2", types.Year, fee, 100)
		_, err := f.k.RegisterGasless(f.ctx, replay)
		require.ErrorIs(t, err, types.ErrNonceUsed)
	})

	t.Run("success; fresh nonce", func(t *testing.T) {
		next := f.registerGaslessMsg(t, user, "clinic2", types.Year, fee, 101)
		_, err := f.k.RegisterGasless(f.ctx, next)
		require.NoError(t, err)
	})
}

func TestRegisterGaslessSignatureBinding(t *testing.T) {
	f := SetupTest(t)
	user := newUser(t)
	p := f.params(t)
	fee := types.RegistrationFee(p, "clinic1", types.Year)
	f.engine.fund(user.addr, p.FeeToken, fee.MulRaw(10))

	testCases := []struct {
		name   string
		mutate func(msg *types.MsgRegisterGasless)
	}{
		{
			name:   "other name",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Name = "clinic9" },
		},
		{
			name:   "other duration",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Duration = 180 * types.Day },
		},
		{
			name:   "other amount",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Amount = fee.MulRaw(2) },
		},
		{
			name:   "other nonce",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Auth.Nonce++ },
		},
		{
			name:   "submitter claims to be the user",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Auth.User = ethcommon.HexToAddress("0x1234") },
		},
		{
			name: "signature for another action",
			mutate: func(msg *types.MsgRegisterGasless) {
				msg.Auth = user.auth(t, signature.Build(testInstanceID, signature.ActionRenew, "clinic1", "31536000", fee.String(), "5"), 5)
			},
		},
		{
			name: "signature for another instance",
			mutate: func(msg *types.MsgRegisterGasless) {
				msg.Auth = user.auth(t, signature.RegisterMessage(testInstanceID+1, msg.Name, msg.Duration, msg.Amount, 5), 5)
			},
		},
		{
			name:   "empty signature",
			mutate: func(msg *types.MsgRegisterGasless) { msg.Auth.Signature = nil },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, fee, 5)
			tc.mutate(&msg)

			_, err := f.k.RegisterGasless(f.ctx, msg)
			require.ErrorIs(t, err, types.ErrInvalidSignature)

			used, err := f.k.IsServiceNonceUsed(f.ctx, msg.Auth.User, msg.Auth.Nonce)
			require.NoError(t, err)
			require.False(t, used)
			require.Empty(t, f.engine.payments)
		})
	}
}

func TestRegisterGaslessDisabled(t *testing.T) {
	user := newUser(t)

	t.Run("fail; disabled by params", func(t *testing.T) {
		f := SetupTest(t)
		p := f.params(t)
		p.GaslessEnabled = false
		require.NoError(t, f.k.UpdateParams(f.ctx, types.MsgUpdateParams{Authority: f.authority, Params: p}))

		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 1)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrGaslessDisabled)
	})

	t.Run("fail; instance id not configured", func(t *testing.T) {
		f := SetupTest(t)
		f.engine.instanceID = 0

		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, f.params(t).BaseFee, 1)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrGaslessDisabled)
	})

	t.Run("fail; zero submitter", func(t *testing.T) {
		f := SetupTest(t)
		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, f.params(t).BaseFee, 1)
		msg.Submitter = ethcommon.Address{}
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrInvalidAddress)
	})
}

func TestRegisterGaslessRollback(t *testing.T) {
	user := newUser(t)

	assertUntouched := func(t *testing.T, f *testFixture, nonce uint64) {
		t.Helper()
		available, err := f.k.IsAvailable(f.ctx, "clinic1")
		require.NoError(t, err)
		require.True(t, available)

		used, err := f.k.IsServiceNonceUsed(f.ctx, user.addr, nonce)
		require.NoError(t, err)
		require.False(t, used)

		owned, err := f.k.GetOwnedDomains(f.ctx, user.addr)
		require.NoError(t, err)
		require.Empty(t, owned)
	}

	t.Run("engine rejects payment", func(t *testing.T) {
		f := SetupTest(t)
		f.engine.payErr = errors.New("insufficient balance")

		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, f.params(t).BaseFee, 9)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrPaymentFailed)
		assertUntouched(t, f, 9)
	})

	t.Run("payment signed for another amount", func(t *testing.T) {
		f := SetupTest(t)
		p := f.params(t)
		f.engine.fund(user.addr, p.FeeToken, p.BaseFee.MulRaw(5))

		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 9)
		msg.Payment = user.payment(t, f, p.BaseFee.MulRaw(2), math.ZeroInt(), 9)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrPaymentFailed)
		assertUntouched(t, f, 9)
	})

	t.Run("user cannot cover the payment", func(t *testing.T) {
		f := SetupTest(t)
		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, f.params(t).BaseFee, 9)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrPaymentFailed)
		assertUntouched(t, f, 9)
	})

	t.Run("amount below fee", func(t *testing.T) {
		f := SetupTest(t)
		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, math.NewInt(1), 9)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.ErrorIs(t, err, types.ErrInsufficientPayment)
		assertUntouched(t, f, 9)
	})
}

func TestRelayIncentive(t *testing.T) {
	user := newUser(t)

	t.Run("eligible registry pays the submitter", func(t *testing.T) {
		f := SetupTest(t)
		p := f.params(t)
		f.engine.eligible = true
		f.engine.reward = math.NewInt(1000)
		priority := math.NewInt(10)
		f.engine.fund(user.addr, p.FeeToken, p.BaseFee.Add(priority))

		msg := f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 1)
		msg.Payment = user.payment(t, f, p.BaseFee, priority, 1)
		_, err := f.k.RegisterGasless(f.ctx, msg)
		require.NoError(t, err)

		require.Len(t, f.engine.disbursals, 1)
		require.Equal(t, f.submitter, f.engine.disbursals[0].to)
		require.True(t, f.engine.balance(f.submitter, p.FeeToken).Equal(math.NewInt(510)))
		require.True(t, f.engine.balance(f.registry, p.FeeToken).Equal(p.BaseFee))
	})

	t.Run("ineligible registry pays nothing", func(t *testing.T) {
		f := SetupTest(t)
		p := f.params(t)
		f.engine.reward = math.NewInt(1000)
		f.engine.fund(user.addr, p.FeeToken, p.BaseFee)

		_, err := f.k.RegisterGasless(f.ctx, f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 1))
		require.NoError(t, err)
		require.Empty(t, f.engine.disbursals)
	})
}

func TestReentrantCallIsRejected(t *testing.T) {
	f := SetupTest(t)
	user := newUser(t)
	p := f.params(t)
	f.engine.fund(user.addr, p.FeeToken, p.BaseFee)

	var nested error
	f.engine.onPay = func(ctx context.Context) error {
		_, nested = f.k.Register(ctx, types.MsgRegister{Caller: user.addr, Value: math.ZeroInt(), Name: "inner", Duration: types.Year})
		return nested
	}

	_, err := f.k.RegisterGasless(f.ctx, f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 1))
	require.ErrorIs(t, nested, types.ErrReentrantCall)
	require.ErrorIs(t, err, types.ErrPaymentFailed)

	// the guard is released once the outer call returns
	f.engine.onPay = nil
	_, err = f.k.RegisterGasless(f.ctx, f.registerGaslessMsg(t, user, "clinic1", types.Year, p.BaseFee, 2))
	require.NoError(t, err)
}
