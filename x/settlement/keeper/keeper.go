package keeper

import (
	"context"
	"encoding/json"
	"errors"

	"cosmossdk.io/collections"
	storetypes "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/settlement/types"
)

// Keeper is an in-ledger stand-in for the external settlement engine. It keeps
// token balances, verifies signed payments and pays executor rewards.
type Keeper struct {
	logger log.Logger

	// state management
	Schema      collections.Schema
	Params      collections.Item[string]                                  // serialized Params
	Balances    collections.Map[collections.Pair[string, string], string] // (account, token) -> amount
	SyncNonces  collections.Map[string, uint64]                           // account -> next sync nonce
	AsyncNonces collections.KeySet[collections.Pair[string, uint64]]      // (account, nonce)
	Stakers     collections.KeySet[string]

	authority ethcommon.Address
}

// NewKeeper creates a new Keeper instance
func NewKeeper(storeService storetypes.KVStoreService, logger log.Logger, authority ethcommon.Address) Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	sb := collections.NewSchemaBuilder(storeService)

	k := Keeper{
		logger:      logger,
		Params:      collections.NewItem(sb, types.ParamsKey, types.ParamsName, collections.StringValue),
		Balances:    collections.NewMap(sb, types.BalancesKey, types.BalancesName, collections.PairKeyCodec(collections.StringKey, collections.StringKey), collections.StringValue),
		SyncNonces:  collections.NewMap(sb, types.SyncNoncesKey, types.SyncNoncesName, collections.StringKey, collections.Uint64Value),
		AsyncNonces: collections.NewKeySet(sb, types.AsyncNoncesKey, types.AsyncNoncesName, collections.PairKeyCodec(collections.StringKey, collections.Uint64Key)),
		Stakers:     collections.NewKeySet(sb, types.StakersKey, types.StakersName, collections.StringKey),
		authority:   authority,
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}

	k.Schema = schema

	return k
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

// GetParams returns the current configuration.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	raw, err := k.Params.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.DefaultParams(), nil
		}
		return types.Params{}, err
	}

	var p types.Params
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return types.Params{}, errorsmod.Wrap(err, "failed to decode params")
	}
	return p, nil
}

// SetParams validates and stores p.
func (k Keeper) SetParams(ctx context.Context, p types.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return k.Params.Set(ctx, p.String())
}

// UpdateParams replaces the configuration on behalf of the authority.
func (k Keeper) UpdateParams(ctx context.Context, authority ethcommon.Address, p types.Params) error {
	if authority != k.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "unauthorized access: %s", authority.Hex())
	}
	return k.SetParams(ctx, p)
}

// GetInstanceID returns the configured instance ID, or zero when it cannot be
// read.
func (k Keeper) GetInstanceID(ctx context.Context) uint64 {
	p, err := k.GetParams(ctx)
	if err != nil {
		k.logger.Error("failed to read params", "error", err)
		return 0
	}
	return p.InstanceID
}

// RewardAmount returns the reward per rewarded action.
func (k Keeper) RewardAmount(ctx context.Context) math.Int {
	p, err := k.GetParams(ctx)
	if err != nil {
		k.logger.Error("failed to read params", "error", err)
		return math.ZeroInt()
	}
	return p.RewardAmount
}

// IsIncentiveEligible reports whether account is a registered staker.
func (k Keeper) IsIncentiveEligible(ctx context.Context, account ethcommon.Address) bool {
	ok, err := k.Stakers.Has(ctx, types.AccountKey(account))
	if err != nil {
		k.logger.Error("failed to read stakers", "error", err)
		return false
	}
	return ok
}

// SetStaker adds or removes account from the staker set.
func (k Keeper) SetStaker(ctx context.Context, account ethcommon.Address, staked bool) error {
	if staked {
		return k.Stakers.Set(ctx, types.AccountKey(account))
	}
	return k.Stakers.Remove(ctx, types.AccountKey(account))
}
