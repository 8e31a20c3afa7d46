package types

import (
	"strings"

	"cosmossdk.io/collections"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	// ParamsKey saves the current module params.
	ParamsKey = collections.NewPrefix(0)

	// ParamsName is the name of the params collection.
	ParamsName = "params"

	// BalancesKey saves (account, token) -> amount.
	BalancesKey = collections.NewPrefix(1)

	// BalancesName is the name of the balances collection.
	BalancesName = "balances"

	// SyncNoncesKey saves the next sequential payment nonce per account.
	SyncNoncesKey = collections.NewPrefix(2)

	// SyncNoncesName is the name of the sync nonce collection.
	SyncNoncesName = "sync_nonces"

	// AsyncNoncesKey saves (account, nonce) pairs consumed by async payments.
	AsyncNoncesKey = collections.NewPrefix(3)

	// AsyncNoncesName is the name of the async nonce collection.
	AsyncNoncesName = "async_nonces"

	// StakersKey saves accounts that earn executor rewards.
	StakersKey = collections.NewPrefix(4)

	// StakersName is the name of the stakers collection.
	StakersName = "stakers"
)

const (
	ModuleName = "settlement"

	StoreKey = ModuleName
)

// AccountKey is the storage key form of an account or token address.
func AccountKey(addr ethcommon.Address) string {
	return strings.ToLower(addr.Hex())
}
