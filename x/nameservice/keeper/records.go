package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// SetResolver points a domain the caller owns at msg.Resolver. A zero
// resolver clears it.
func (k Keeper) SetResolver(ctx context.Context, msg types.MsgSetResolver) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		rec, err := k.ownedActiveRecord(ctx, msg.NameHash, msg.Caller)
		if err != nil {
			return err
		}

		rec.Resolver = msg.Resolver
		if err := k.setRecord(ctx, msg.NameHash, rec); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeResolverUpdated,
			sdk.NewAttribute(types.AttributeKeyNameHash, types.HashKey(msg.NameHash)),
			sdk.NewAttribute(types.AttributeKeyResolver, types.AddressKey(msg.Resolver)),
		))
		return nil
	})
}

// SetMetadata replaces the metadata of a domain the caller owns.
func (k Keeper) SetMetadata(ctx context.Context, msg types.MsgSetMetadata) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		rec, err := k.ownedActiveRecord(ctx, msg.NameHash, msg.Caller)
		if err != nil {
			return err
		}

		rec.Metadata = msg.Metadata
		if err := k.setRecord(ctx, msg.NameHash, rec); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeMetadataUpdated,
			sdk.NewAttribute(types.AttributeKeyNameHash, types.HashKey(msg.NameHash)),
		))
		return nil
	})
}
