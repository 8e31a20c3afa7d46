package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/utils/signature"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	"github.com/motus-labs/motus-name-service/x/settlement/types"
)

var _ nstypes.SettlementEngine = Keeper{}

// Pay executes a payment signed by p.From. The executor named in the signed
// message must be the caller unless it is the zero address. Sync payments
// consume the payer's next sequential nonce, async payments any unused one.
func (k Keeper) Pay(ctx context.Context, caller ethcommon.Address, p nstypes.Payment) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	if params.InstanceID == 0 {
		return types.ErrNotConfigured
	}

	amount, priorityFee := p.Amount, p.PriorityFee
	if priorityFee.IsNil() {
		priorityFee = math.ZeroInt()
	}
	if amount.IsNil() || amount.IsNegative() || priorityFee.IsNegative() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "amount and priority fee must be non-negative")
	}

	message := signature.PaymentMessage(params.InstanceID, p.To, p.Token, amount, priorityFee, p.Nonce, p.Async, p.Executor)
	if !signature.VerifyMessage(message, p.Signature, p.From) {
		return errorsmod.Wrapf(types.ErrInvalidSignature, "payment not signed by %s", p.From.Hex())
	}
	if p.Executor != (ethcommon.Address{}) && p.Executor != caller {
		return errorsmod.Wrapf(types.ErrExecutorMismatch, "executor %s, caller %s", p.Executor.Hex(), caller.Hex())
	}

	if err := k.checkPaymentNonce(ctx, p.From, p.Nonce, p.Async); err != nil {
		return err
	}
	if err := k.Transfer(ctx, p.From, p.To, p.Token, amount.Add(priorityFee)); err != nil {
		return err
	}
	if err := k.consumePaymentNonce(ctx, p.From, p.Nonce, p.Async); err != nil {
		return err
	}

	k.logger.Debug("payment executed", "from", p.From.Hex(), "to", p.To.Hex(), "amount", amount.String(), "async", p.Async)
	return nil
}

// Disburse credits reward to `to` and moves extra out of payer's balance.
func (k Keeper) Disburse(ctx context.Context, payer, to, token ethcommon.Address, reward, extra math.Int) error {
	if extra.IsNil() {
		extra = math.ZeroInt()
	}
	if err := k.Transfer(ctx, payer, to, token, extra); err != nil {
		return err
	}
	if reward.IsNil() || reward.IsZero() {
		return nil
	}
	return k.Mint(ctx, to, token, reward)
}

// NextSyncNonce returns the nonce the next sync payment from account must use.
func (k Keeper) NextSyncNonce(ctx context.Context, account ethcommon.Address) (uint64, error) {
	n, err := k.SyncNonces.Get(ctx, types.AccountKey(account))
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// IsAsyncNonceUsed reports whether account already spent an async nonce.
func (k Keeper) IsAsyncNonceUsed(ctx context.Context, account ethcommon.Address, nonce uint64) (bool, error) {
	return k.AsyncNonces.Has(ctx, collections.Join(types.AccountKey(account), nonce))
}

func (k Keeper) checkPaymentNonce(ctx context.Context, account ethcommon.Address, nonce uint64, async bool) error {
	if async {
		used, err := k.IsAsyncNonceUsed(ctx, account, nonce)
		if err != nil {
			return err
		}
		if used {
			return errorsmod.Wrapf(types.ErrInvalidNonce, "async nonce %d already used", nonce)
		}
		return nil
	}

	next, err := k.NextSyncNonce(ctx, account)
	if err != nil {
		return err
	}
	if nonce != next {
		return errorsmod.Wrapf(types.ErrInvalidNonce, "expected sync nonce %d, got %d", next, nonce)
	}
	return nil
}

func (k Keeper) consumePaymentNonce(ctx context.Context, account ethcommon.Address, nonce uint64, async bool) error {
	if async {
		return k.AsyncNonces.Set(ctx, collections.Join(types.AccountKey(account), nonce))
	}
	return k.SyncNonces.Set(ctx, types.AccountKey(account), nonce+1)
}
