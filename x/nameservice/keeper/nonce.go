package keeper

import (
	"context"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// IsServiceNonceUsed reports whether user already consumed nonce in a
// gasless action.
func (k Keeper) IsServiceNonceUsed(ctx context.Context, user ethcommon.Address, nonce uint64) (bool, error) {
	return k.UsedNonces.Has(ctx, collections.Join(types.AddressKey(user), nonce))
}

// checkNonce fails if the pair was consumed before.
func (k Keeper) checkNonce(ctx context.Context, user ethcommon.Address, nonce uint64) error {
	used, err := k.IsServiceNonceUsed(ctx, user, nonce)
	if err != nil {
		return err
	}
	if used {
		return errorsmod.Wrapf(types.ErrNonceUsed, "user %s nonce %d", user.Hex(), nonce)
	}
	return nil
}

// markNonceUsed consumes the pair. It is only called inside an atomic action,
// after every other check passed.
func (k Keeper) markNonceUsed(ctx context.Context, user ethcommon.Address, nonce uint64) error {
	if err := k.checkNonce(ctx, user, nonce); err != nil {
		return err
	}
	return k.UsedNonces.Set(ctx, collections.Join(types.AddressKey(user), nonce))
}
