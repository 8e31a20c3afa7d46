package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// indexOwner records hash under owner and makes it the owner's primary domain
// if they have none.
func (k Keeper) indexOwner(ctx context.Context, owner ethcommon.Address, hash ethcommon.Hash) error {
	ownerKey := types.AddressKey(owner)
	if err := k.OwnedDomains.Set(ctx, collections.Join(ownerKey, types.HashKey(hash))); err != nil {
		return err
	}

	has, err := k.PrimaryDomains.Has(ctx, ownerKey)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	return k.PrimaryDomains.Set(ctx, ownerKey, types.HashKey(hash))
}

// unindexOwner drops hash from owner's index and clears the primary pointer
// if it pointed at hash.
func (k Keeper) unindexOwner(ctx context.Context, owner ethcommon.Address, hash ethcommon.Hash) error {
	ownerKey := types.AddressKey(owner)
	hashKey := types.HashKey(hash)
	if err := k.OwnedDomains.Remove(ctx, collections.Join(ownerKey, hashKey)); err != nil {
		return err
	}

	primary, err := k.PrimaryDomains.Get(ctx, ownerKey)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return nil
		}
		return err
	}
	if primary != hashKey {
		return nil
	}
	return k.PrimaryDomains.Remove(ctx, ownerKey)
}
