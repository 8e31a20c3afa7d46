// Package app is the devnet ledger: a committed multistore hosting the name
// registry and the settlement engine, executing one serialized transaction
// per block.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/collections"
	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	nskeeper "github.com/motus-labs/motus-name-service/x/nameservice/keeper"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	stkeeper "github.com/motus-labs/motus-name-service/x/settlement/keeper"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

const (
	ChainID = "motus-devnet-1"

	// LedgerStoreKey holds receipts.
	LedgerStoreKey = "ledger"
)

// App is safe for concurrent use; transactions are applied one at a time.
type App struct {
	mu sync.Mutex

	logger log.Logger
	db     dbm.DB
	cms    storetypes.CommitMultiStore
	keys   map[string]*storetypes.KVStoreKey
	clock  func() time.Time
	abi    abi.ABI

	NameserviceKeeper nskeeper.Keeper
	SettlementKeeper  stkeeper.Keeper

	receipts collections.Map[string, string] // tx hash -> serialized Receipt

	registry  ethcommon.Address
	authority ethcommon.Address
}

// Option configures an App.
type Option func(*App)

// WithClock sets the source of block times.
func WithClock(clock func() time.Time) Option {
	return func(a *App) { a.clock = clock }
}

// WithDB backs the ledger with db instead of an in-memory database.
func WithDB(db dbm.DB) Option {
	return func(a *App) { a.db = db }
}

// RegistryAddress is the registry's account in the settlement engine.
func RegistryAddress() ethcommon.Address {
	return ethcommon.BytesToAddress(authtypes.NewModuleAddress(nstypes.ModuleName))
}

// New builds the ledger and loads the latest committed state.
func New(logger log.Logger, authority ethcommon.Address, opts ...Option) (*App, error) {
	a := &App{
		logger:    logger.With(log.ModuleKey, "app"),
		clock:     time.Now,
		registry:  RegistryAddress(),
		authority: authority,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.db == nil {
		a.db = dbm.NewMemDB()
	}

	parsed, err := nstypes.ParseRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry abi: %w", err)
	}
	a.abi = parsed

	a.keys = storetypes.NewKVStoreKeys(nstypes.StoreKey, sttypes.StoreKey, LedgerStoreKey)
	a.cms = store.NewCommitMultiStore(a.db, a.logger, metrics.NewNoOpMetrics())
	for _, key := range a.keys {
		a.cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := a.cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	a.SettlementKeeper = stkeeper.NewKeeper(runtime.NewKVStoreService(a.keys[sttypes.StoreKey]), a.logger, authority)
	a.NameserviceKeeper = nskeeper.NewKeeper(
		runtime.NewKVStoreService(a.keys[nstypes.StoreKey]),
		a.logger,
		authority,
		a.registry,
		a.SettlementKeeper,
	)

	sb := collections.NewSchemaBuilder(runtime.NewKVStoreService(a.keys[LedgerStoreKey]))
	a.receipts = collections.NewMap(sb, collections.NewPrefix(0), "receipts", collections.StringKey, collections.StringValue)
	if _, err := sb.Build(); err != nil {
		return nil, err
	}

	a.logger.Info("ledger loaded", "height", a.Height(), "registry", a.registry.Hex())
	return a, nil
}

// Height is the last committed block.
func (a *App) Height() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.height()
}

func (a *App) height() int64 {
	return a.cms.LastCommitID().Version
}

// Registry returns the registry's account address.
func (a *App) Registry() ethcommon.Address {
	return a.registry
}

// ABI returns the registry contract interface.
func (a *App) ABI() abi.ABI {
	return a.abi
}

// Close releases the underlying database.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db.Close()
}

// newContext opens a context on a fresh cache of the committed state. Nothing
// reaches the committed state until the cache is written.
func (a *App) newContext(ctx context.Context) (sdk.Context, storetypes.CacheMultiStore) {
	cache := a.cms.CacheMultiStore()
	header := cmtproto.Header{
		ChainID: ChainID,
		Height:  a.height() + 1,
		Time:    a.clock().UTC(),
	}
	return sdk.NewContext(cache, header, false, a.logger).WithContext(ctx), cache
}

// Update runs fn as one committed block. It is how genesis and admin
// tooling write state outside the registry's ABI.
func (a *App) Update(ctx context.Context, fn func(ctx sdk.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sdkCtx, cache := a.newContext(ctx)
	if err := fn(sdkCtx); err != nil {
		return err
	}
	cache.Write()
	a.cms.Commit()
	return nil
}

// View runs fn against committed state and discards any writes.
func (a *App) View(ctx context.Context, fn func(ctx sdk.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sdkCtx, _ := a.newContext(ctx)
	return fn(sdkCtx)
}
