package keeper_test

import (
	"errors"
	"testing"
	"time"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

func TestRenewExtendsFromPriorExpiry(t *testing.T) {
	f := SetupTest(t)
	owner := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	hash := f.registerDirect(t, owner, "gerry", types.Year)

	before, err := f.k.GetDomain(f.ctx, hash)
	require.NoError(t, err)

	f.advance(100 * 24 * time.Hour)
	fee, err := f.k.CalculateRenewalFee(f.ctx, types.Year)
	require.NoError(t, err)
	f.engine.fund(owner, types.NativeToken, fee)

	require.NoError(t, f.k.Renew(f.ctx, types.MsgRenew{Caller: owner, Value: fee, NameHash: hash, Duration: types.Year}))

	after, err := f.k.GetDomain(f.ctx, hash)
	require.NoError(t, err)
	require.Equal(t, before.ExpiresAt+int64(types.Year), after.ExpiresAt)
	require.Equal(t, before.RegisteredAt, after.RegisteredAt)
}

func TestRenewFailures(t *testing.T) {
	f := SetupTest(t)
	owner := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	stranger := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	hash := f.registerDirect(t, owner, "gerry", 30*types.Day)
	f.engine.fund(owner, types.NativeToken, math.NewInt(1_000_000_000_000_000_000))
	f.engine.fund(stranger, types.NativeToken, math.NewInt(1_000_000_000_000_000_000))
	fee := types.DefaultParams().BaseFee

	t.Run("fail; unknown domain", func(t *testing.T) {
		err := f.k.Renew(f.ctx, types.MsgRenew{Caller: owner, Value: fee, NameHash: f.hashOf(t, "nobody"), Duration: types.Year})
		require.ErrorIs(t, err, types.ErrDomainNotFound)
	})

	t.Run("fail; not owner", func(t *testing.T) {
		err := f.k.Renew(f.ctx, types.MsgRenew{Caller: stranger, Value: fee, NameHash: hash, Duration: types.Year})
		require.ErrorIs(t, err, types.ErrNotOwner)
	})

	t.Run("fail; duration out of range", func(t *testing.T) {
		err := f.k.Renew(f.ctx, types.MsgRenew{Caller: owner, Value: fee, NameHash: hash, Duration: types.Day})
		require.ErrorIs(t, err, types.ErrInvalidDuration)
	})

	t.Run("fail; underpaid", func(t *testing.T) {
		err := f.k.Renew(f.ctx, types.MsgRenew{Caller: owner, Value: math.NewInt(1), NameHash: hash, Duration: types.Year})
		require.ErrorIs(t, err, types.ErrInsufficientPayment)
	})

	t.Run("fail; expired", func(t *testing.T) {
		f.advance(30 * 24 * time.Hour)
		err := f.k.Renew(f.ctx, types.MsgRenew{Caller: owner, Value: fee, NameHash: hash, Duration: types.Year})
		require.ErrorIs(t, err, types.ErrDomainExpired)
	})
}

func TestRenewGasless(t *testing.T) {
	f := SetupTest(t)
	user := newUser(t)
	p := f.params(t)
	hash := f.registerDirect(t, user.addr, "gerry", types.Year)
	f.engine.fund(user.addr, p.FeeToken, p.BaseFee.MulRaw(2))

	before, err := f.k.GetDomain(f.ctx, hash)
	require.NoError(t, err)

	build := func(nonce uint64) types.MsgRenewGasless {
		return types.MsgRenewGasless{
			Submitter: f.submitter,
			NameHash:  hash,
			Duration:  types.Year,
			Amount:    p.BaseFee,
			Auth:      user.auth(t, signature.RenewMessage(testInstanceID, hash, types.Year, p.BaseFee, nonce), nonce),
			Payment:   user.payment(t, f, p.BaseFee, math.ZeroInt(), nonce),
		}
	}

	msg := build(1)
	require.NoError(t, f.k.RenewGasless(f.ctx, msg))

	after, err := f.k.GetDomain(f.ctx, hash)
	require.NoError(t, err)
	require.Equal(t, before.ExpiresAt+int64(types.Year), after.ExpiresAt)

	require.ErrorIs(t, f.k.RenewGasless(f.ctx, msg), types.ErrNonceUsed)

	t.Run("fail; signed by someone else", func(t *testing.T) {
		other := newUser(t)
		forged := build(2)
		forged.Auth = other.auth(t, signature.RenewMessage(testInstanceID, hash, types.Year, p.BaseFee, 2), 2)
		forged.Auth.User = user.addr
		require.ErrorIs(t, f.k.RenewGasless(f.ctx, forged), types.ErrInvalidSignature)
	})

	t.Run("fail; payment rejected leaves expiry untouched", func(t *testing.T) {
		f.engine.payErr = errors.New("engine down")
		defer func() { f.engine.payErr = nil }()

		require.ErrorIs(t, f.k.RenewGasless(f.ctx, build(3)), types.ErrPaymentFailed)
		rec, err := f.k.GetDomain(f.ctx, hash)
		require.NoError(t, err)
		require.Equal(t, after.ExpiresAt, rec.ExpiresAt)

		used, err := f.k.IsServiceNonceUsed(f.ctx, user.addr, 3)
		require.NoError(t, err)
		require.False(t, used)
	})
}
