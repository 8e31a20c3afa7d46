package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// forwardPayment hands the user's signed payment to the settlement engine with
// the registry as recipient and executor. The signature is only interpreted by
// the engine.
func (k Keeper) forwardPayment(ctx context.Context, p types.Params, user ethcommon.Address, amount math.Int, pay types.PaymentAuth) error {
	priorityFee := pay.PriorityFee
	if priorityFee.IsNil() {
		priorityFee = math.ZeroInt()
	}
	if priorityFee.IsNegative() {
		return errorsmod.Wrap(types.ErrPaymentFailed, "negative priority fee")
	}

	err := k.engine.Pay(ctx, k.address, types.Payment{
		From:        user,
		To:          k.address,
		Token:       p.FeeToken,
		Amount:      amount,
		PriorityFee: priorityFee,
		Nonce:       pay.Nonce,
		Async:       pay.Async,
		Executor:    k.address,
		Signature:   pay.Signature,
	})
	if err != nil {
		return errorsmod.Wrapf(types.ErrPaymentFailed, "%s", err)
	}
	return nil
}

// payRelayIncentive rewards the submitter when the engine recognizes the
// registry as an incentive-eligible participant.
func (k Keeper) payRelayIncentive(ctx sdk.Context, p types.Params, submitter ethcommon.Address, priorityFee math.Int) error {
	if !k.engine.IsIncentiveEligible(ctx, k.address) {
		return nil
	}
	if priorityFee.IsNil() {
		priorityFee = math.ZeroInt()
	}

	reward := types.RelayReward(p, k.engine.RewardAmount(ctx))
	if reward.IsZero() && priorityFee.IsZero() {
		return nil
	}

	if err := k.engine.Disburse(ctx, k.address, submitter, p.FeeToken, reward, priorityFee); err != nil {
		return errorsmod.Wrapf(types.ErrPaymentFailed, "relay incentive: %s", err)
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRelayIncentivePaid,
		sdk.NewAttribute(types.AttributeKeySubmitter, types.AddressKey(submitter)),
		sdk.NewAttribute(types.AttributeKeyAmount, reward.Add(priorityFee).String()),
	))
	return nil
}

// collectValue moves native value attached to a direct call into the registry
// and refunds whatever exceeds fee.
func (k Keeper) collectValue(ctx context.Context, caller ethcommon.Address, value, fee math.Int) error {
	if value.IsNil() {
		value = math.ZeroInt()
	}
	if value.LT(fee) {
		return errorsmod.Wrapf(types.ErrInsufficientPayment, "sent %s, fee is %s", value, fee)
	}
	if value.IsZero() {
		return nil
	}
	if k.engine == nil {
		return errorsmod.Wrap(types.ErrPaymentFailed, "no settlement engine")
	}

	if err := k.engine.Transfer(ctx, caller, k.address, types.NativeToken, value); err != nil {
		return errorsmod.Wrapf(types.ErrPaymentFailed, "%s", err)
	}
	if excess := value.Sub(fee); excess.IsPositive() {
		if err := k.engine.Transfer(ctx, k.address, caller, types.NativeToken, excess); err != nil {
			return errorsmod.Wrapf(types.ErrPaymentFailed, "refund: %s", err)
		}
	}
	return nil
}
