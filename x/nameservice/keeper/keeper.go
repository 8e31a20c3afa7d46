package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"cosmossdk.io/collections"
	storetypes "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

type Keeper struct {
	logger log.Logger

	// state management
	Schema         collections.Schema
	Params         collections.Item[string]                             // serialized Params
	Domains        collections.Map[string, string]                      // name-hash -> serialized DomainRecord
	OwnedDomains   collections.KeySet[collections.Pair[string, string]] // (owner, name-hash)
	PrimaryDomains collections.Map[string, string]                      // owner -> name-hash
	UsedNonces     collections.KeySet[collections.Pair[string, uint64]] // (user, nonce)

	// settlement engine capability
	engine types.SettlementEngine

	// address is the registry's own account in the settlement engine.
	address   ethcommon.Address
	authority ethcommon.Address

	guard *atomic.Bool
}

// NewKeeper creates a new Keeper instance
func NewKeeper(
	storeService storetypes.KVStoreService,
	logger log.Logger,
	authority ethcommon.Address,
	address ethcommon.Address,
	engine types.SettlementEngine,
) Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	sb := collections.NewSchemaBuilder(storeService)

	k := Keeper{
		logger:         logger,
		Params:         collections.NewItem(sb, types.ParamsKey, types.ParamsName, collections.StringValue),
		Domains:        collections.NewMap(sb, types.DomainsKey, types.DomainsName, collections.StringKey, collections.StringValue),
		OwnedDomains:   collections.NewKeySet(sb, types.OwnedDomainsKey, types.OwnedDomainsName, collections.PairKeyCodec(collections.StringKey, collections.StringKey)),
		PrimaryDomains: collections.NewMap(sb, types.PrimaryDomainsKey, types.PrimaryDomainsName, collections.StringKey, collections.StringValue),
		UsedNonces:     collections.NewKeySet(sb, types.UsedNoncesKey, types.UsedNoncesName, collections.PairKeyCodec(collections.StringKey, collections.Uint64Key)),
		engine:         engine,
		address:        address,
		authority:      authority,
		guard:          new(atomic.Bool),
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

// GetAuthority returns the account allowed to change params.
func (k Keeper) GetAuthority() ethcommon.Address {
	return k.authority
}

// Address returns the registry's account in the settlement engine.
func (k Keeper) Address() ethcommon.Address {
	return k.address
}

// atomically runs fn against a cached copy of the store and writes it back
// only when fn succeeds. A call that arrives while another action is still
// running is rejected.
func (k Keeper) atomically(ctx context.Context, fn func(ctx sdk.Context) error) error {
	if !k.guard.CompareAndSwap(false, true) {
		return types.ErrReentrantCall
	}
	defer k.guard.Store(false)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cacheCtx, write := sdkCtx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
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

// SetParams validates and stores p as-is.
func (k Keeper) SetParams(ctx context.Context, p types.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return k.Params.Set(ctx, p.String())
}

func (k Keeper) getRecord(ctx context.Context, hash ethcommon.Hash) (types.DomainRecord, bool, error) {
	raw, err := k.Domains.Get(ctx, types.HashKey(hash))
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.DomainRecord{}, false, nil
		}
		return types.DomainRecord{}, false, err
	}

	var rec types.DomainRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return types.DomainRecord{}, false, errorsmod.Wrapf(err, "failed to decode domain %s", hash.Hex())
	}
	return rec, true, nil
}

func (k Keeper) setRecord(ctx context.Context, hash ethcommon.Hash, rec types.DomainRecord) error {
	return k.Domains.Set(ctx, types.HashKey(hash), rec.String())
}
