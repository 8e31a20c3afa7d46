package keeper

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// Transfer moves a domain owned by the caller to msg.NewOwner.
func (k Keeper) Transfer(ctx context.Context, msg types.MsgTransfer) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		rec, err := k.checkTransferable(ctx, msg.NameHash, msg.Caller, msg.NewOwner)
		if err != nil {
			return err
		}
		return k.moveDomain(ctx, msg.NameHash, rec, msg.NewOwner, false)
	})
}

// TransferGasless moves a domain owned by msg.Auth.User. The service signature
// is always required; the submitter is never treated as the owner.
func (k Keeper) TransferGasless(ctx context.Context, msg types.MsgTransferGasless) error {
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

		rec, err := k.checkTransferable(ctx, msg.NameHash, msg.Auth.User, msg.NewOwner)
		if err != nil {
			return err
		}

		params := signature.TransferParams(msg.NameHash, msg.NewOwner, msg.Auth.Nonce)
		if err := verifyService(instanceID, signature.ActionTransfer, params, msg.Auth); err != nil {
			return err
		}

		if err := k.moveDomain(ctx, msg.NameHash, rec, msg.NewOwner, true); err != nil {
			return err
		}
		return k.markNonceUsed(ctx, msg.Auth.User, msg.Auth.Nonce)
	})
}

func (k Keeper) checkTransferable(
	ctx sdk.Context,
	hash ethcommon.Hash,
	owner ethcommon.Address,
	newOwner ethcommon.Address,
) (types.DomainRecord, error) {
	if newOwner == (ethcommon.Address{}) {
		return types.DomainRecord{}, errorsmod.Wrap(types.ErrInvalidNewOwner, "new owner cannot be zero")
	}
	rec, err := k.ownedActiveRecord(ctx, hash, owner)
	if err != nil {
		return types.DomainRecord{}, err
	}
	if newOwner == rec.Owner {
		return types.DomainRecord{}, errorsmod.Wrap(types.ErrInvalidNewOwner, "new owner already owns the domain")
	}
	return rec, nil
}

// moveDomain reassigns the record and keeps both owners' indexes consistent.
func (k Keeper) moveDomain(ctx sdk.Context, hash ethcommon.Hash, rec types.DomainRecord, newOwner ethcommon.Address, gasless bool) error {
	prevOwner := rec.Owner
	if err := k.unindexOwner(ctx, prevOwner, hash); err != nil {
		return err
	}

	rec.Owner = newOwner
	if err := k.setRecord(ctx, hash, rec); err != nil {
		return err
	}
	if err := k.indexOwner(ctx, newOwner, hash); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeDomainTransferred,
		sdk.NewAttribute(types.AttributeKeyName, rec.Name),
		sdk.NewAttribute(types.AttributeKeyNameHash, types.HashKey(hash)),
		sdk.NewAttribute(types.AttributeKeyOwner, types.AddressKey(prevOwner)),
		sdk.NewAttribute(types.AttributeKeyNewOwner, types.AddressKey(newOwner)),
		sdk.NewAttribute(types.AttributeKeyGasless, strconv.FormatBool(gasless)),
	))

	k.logger.Info("domain transferred", "name", rec.Name, "from", prevOwner.Hex(), "to", newOwner.Hex(), "gasless", gasless)
	return nil
}
