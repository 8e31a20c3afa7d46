package keeper

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// Renew extends a domain the caller owns, paid with attached native value.
func (k Keeper) Renew(ctx context.Context, msg types.MsgRenew) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		p, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		rec, err := k.checkRenewable(ctx, p, msg.NameHash, msg.Caller, msg.Duration)
		if err != nil {
			return err
		}

		fee := types.RenewalFee(p, msg.Duration)
		if err := k.collectValue(ctx, msg.Caller, msg.Value, fee); err != nil {
			return err
		}

		return k.extend(ctx, msg.NameHash, rec, msg.Duration, fee, false)
	})
}

// RenewGasless extends a domain owned by msg.Auth.User.
func (k Keeper) RenewGasless(ctx context.Context, msg types.MsgRenewGasless) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		p, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		instanceID, err := k.gaslessInstance(ctx, p)
		if err != nil {
			return err
		}
		if err := validateGaslessParties(msg.Submitter, msg.Auth); err != nil {
			return err
		}
		if err := k.checkNonce(ctx, msg.Auth.User, msg.Auth.Nonce); err != nil {
			return err
		}

		rec, err := k.checkRenewable(ctx, p, msg.NameHash, msg.Auth.User, msg.Duration)
		if err != nil {
			return err
		}

		fee := types.RenewalFee(p, msg.Duration)
		amount := msg.Amount
		if amount.IsNil() || amount.LT(fee) {
			return errorsmod.Wrapf(types.ErrInsufficientPayment, "amount %s below fee %s", amount, fee)
		}

		params := signature.RenewParams(msg.NameHash, msg.Duration, amount, msg.Auth.Nonce)
		if err := verifyService(instanceID, signature.ActionRenew, params, msg.Auth); err != nil {
			return err
		}

		if err := k.forwardPayment(ctx, p, msg.Auth.User, amount, msg.Payment); err != nil {
			return err
		}
		if err := k.extend(ctx, msg.NameHash, rec, msg.Duration, amount, true); err != nil {
			return err
		}
		if err := k.markNonceUsed(ctx, msg.Auth.User, msg.Auth.Nonce); err != nil {
			return err
		}

		return k.payRelayIncentive(ctx, p, msg.Submitter, msg.Payment.PriorityFee)
	})
}

func (k Keeper) checkRenewable(
	ctx sdk.Context,
	p types.Params,
	hash ethcommon.Hash,
	owner ethcommon.Address,
	duration uint64,
) (types.DomainRecord, error) {
	rec, err := k.ownedActiveRecord(ctx, hash, owner)
	if err != nil {
		return types.DomainRecord{}, err
	}
	if err := p.ValidateDuration(duration); err != nil {
		return types.DomainRecord{}, err
	}
	return rec, nil
}

// ownedActiveRecord loads the record for hash and checks that it exists, has
// not expired and belongs to owner.
func (k Keeper) ownedActiveRecord(ctx sdk.Context, hash ethcommon.Hash, owner ethcommon.Address) (types.DomainRecord, error) {
	rec, found, err := k.getRecord(ctx, hash)
	if err != nil {
		return types.DomainRecord{}, err
	}
	if !found {
		return types.DomainRecord{}, errorsmod.Wrapf(types.ErrDomainNotFound, "%s", hash.Hex())
	}
	if rec.IsExpired(ctx.BlockTime()) {
		return types.DomainRecord{}, errorsmod.Wrapf(types.ErrDomainExpired, "%s expired at %d", rec.Name, rec.ExpiresAt)
	}
	if rec.Owner != owner {
		return types.DomainRecord{}, errorsmod.Wrapf(types.ErrNotOwner, "%s is not the owner of %s", owner.Hex(), rec.Name)
	}
	return rec, nil
}

// extend adds duration to the current expiry.
func (k Keeper) extend(ctx sdk.Context, hash ethcommon.Hash, rec types.DomainRecord, duration uint64, paid math.Int, gasless bool) error {
	rec.ExpiresAt += int64(duration)
	if err := k.setRecord(ctx, hash, rec); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeDomainRenewed,
		sdk.NewAttribute(types.AttributeKeyName, rec.Name),
		sdk.NewAttribute(types.AttributeKeyNameHash, types.HashKey(hash)),
		sdk.NewAttribute(types.AttributeKeyExpiresAt, strconv.FormatInt(rec.ExpiresAt, 10)),
		sdk.NewAttribute(types.AttributeKeyFee, paid.String()),
		sdk.NewAttribute(types.AttributeKeyGasless, strconv.FormatBool(gasless)),
	))

	k.logger.Info("domain renewed", "name", rec.Name, "expires_at", rec.ExpiresAt, "gasless", gasless)
	return nil
}
