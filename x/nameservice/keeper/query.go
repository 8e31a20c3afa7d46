package keeper

import (
	"context"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// IsAvailable reports whether name can be registered now. Invalid names are
// never available and return ErrInvalidName.
func (k Keeper) IsAvailable(ctx context.Context, name string) (bool, error) {
	p, err := k.GetParams(ctx)
	if err != nil {
		return false, err
	}
	if err := p.ValidateName(name); err != nil {
		return false, err
	}

	rec, found, err := k.getRecord(ctx, types.DomainHash(name, p.TLD))
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return rec.IsExpired(sdk.UnwrapSDKContext(ctx).BlockTime()), nil
}

// GetDomain returns the record stored under hash, expired or not.
func (k Keeper) GetDomain(ctx context.Context, hash ethcommon.Hash) (types.DomainRecord, error) {
	rec, found, err := k.getRecord(ctx, hash)
	if err != nil {
		return types.DomainRecord{}, err
	}
	if !found {
		return types.DomainRecord{}, errorsmod.Wrapf(types.ErrDomainNotFound, "%s", hash.Hex())
	}
	return rec, nil
}

// GetDomainByName resolves a label under the configured TLD.
func (k Keeper) GetDomainByName(ctx context.Context, name string) (ethcommon.Hash, types.DomainRecord, error) {
	p, err := k.GetParams(ctx)
	if err != nil {
		return ethcommon.Hash{}, types.DomainRecord{}, err
	}
	if err := p.ValidateName(name); err != nil {
		return ethcommon.Hash{}, types.DomainRecord{}, err
	}

	hash := types.DomainHash(name, p.TLD)
	rec, err := k.GetDomain(ctx, hash)
	return hash, rec, err
}

// DomainState returns the lifecycle state of hash at the current block time.
func (k Keeper) DomainState(ctx context.Context, hash ethcommon.Hash) (types.DomainState, error) {
	rec, found, err := k.getRecord(ctx, hash)
	if err != nil {
		return types.StateAvailable, err
	}
	if !found {
		return types.StateAvailable, nil
	}
	return rec.State(sdk.UnwrapSDKContext(ctx).BlockTime()), nil
}

// GetOwnedDomains lists the name-hashes indexed under owner, including expired
// ones that nobody has re-registered.
func (k Keeper) GetOwnedDomains(ctx context.Context, owner ethcommon.Address) ([]ethcommon.Hash, error) {
	rng := collections.NewPrefixedPairRange[string, string](types.AddressKey(owner))
	iter, err := k.OwnedDomains.Iterate(ctx, rng)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var hashes []ethcommon.Hash
	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, ethcommon.HexToHash(key.K2()))
	}
	return hashes, nil
}

// GetPrimaryDomain returns owner's primary name-hash, or the zero hash when
// none is set.
func (k Keeper) GetPrimaryDomain(ctx context.Context, owner ethcommon.Address) (ethcommon.Hash, error) {
	has, err := k.PrimaryDomains.Has(ctx, types.AddressKey(owner))
	if err != nil || !has {
		return ethcommon.Hash{}, err
	}
	raw, err := k.PrimaryDomains.Get(ctx, types.AddressKey(owner))
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return ethcommon.HexToHash(raw), nil
}

// CalculateRegistrationFee prices name for duration under the current params.
func (k Keeper) CalculateRegistrationFee(ctx context.Context, name string, duration uint64) (math.Int, error) {
	p, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if err := p.ValidateName(name); err != nil {
		return math.Int{}, err
	}
	return types.RegistrationFee(p, name, duration), nil
}

// CalculateRenewalFee prices a renewal of duration under the current params.
func (k Keeper) CalculateRenewalFee(ctx context.Context, duration uint64) (math.Int, error) {
	p, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return types.RenewalFee(p, duration), nil
}
