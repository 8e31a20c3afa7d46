package keeper

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

func (k Keeper) hasAuthority(addr ethcommon.Address) bool {
	return addr != (ethcommon.Address{}) && addr == k.authority
}

// UpdateParams replaces the configuration. The stored Version is always the
// previous one plus one, whatever msg.Params carries.
func (k Keeper) UpdateParams(ctx context.Context, msg types.MsgUpdateParams) error {
	if !k.hasAuthority(msg.Authority) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "unauthorized access: %s", msg.Authority.Hex())
	}

	return k.atomically(ctx, func(ctx sdk.Context) error {
		current, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		next := msg.Params
		// name-hashes are derived from the TLD, so records would be orphaned
		if next.TLD != current.TLD {
			return errorsmod.Wrapf(types.ErrInvalidParams, "tld is fixed at %q", current.TLD)
		}
		next.Version = current.Version + 1
		if err := k.SetParams(ctx, next); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyVersion, strconv.FormatUint(next.Version, 10)),
		))
		k.logger.Info("params updated", "version", next.Version)
		return nil
	})
}

// WithdrawFees moves accumulated fees from the registry account to msg.To.
func (k Keeper) WithdrawFees(ctx context.Context, msg types.MsgWithdrawFees) error {
	if !k.hasAuthority(msg.Authority) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "unauthorized access: %s", msg.Authority.Hex())
	}
	if msg.To == (ethcommon.Address{}) {
		return errorsmod.Wrap(types.ErrInvalidAddress, "recipient cannot be zero")
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return errorsmod.Wrap(types.ErrInsufficientPayment, "amount must be positive")
	}
	if k.engine == nil {
		return errorsmod.Wrap(types.ErrPaymentFailed, "no settlement engine")
	}

	return k.atomically(ctx, func(ctx sdk.Context) error {
		if err := k.engine.Transfer(ctx, k.address, msg.To, msg.Token, msg.Amount); err != nil {
			return errorsmod.Wrapf(types.ErrPaymentFailed, "%s", err)
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeFeesWithdrawn,
			sdk.NewAttribute(types.AttributeKeyRecipient, types.AddressKey(msg.To)),
			sdk.NewAttribute(types.AttributeKeyAmount, msg.Amount.String()),
		))
		return nil
	})
}
