package types

import (
	"strings"

	"cosmossdk.io/collections"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ParamsKey saves the current module params.
	ParamsKey = collections.NewPrefix(0)

	// ParamsName is the name of the params collection.
	ParamsName = "params"

	// DomainsKey saves domain records keyed by name-hash.
	DomainsKey = collections.NewPrefix(1)

	// DomainsName is the name of the domains collection.
	DomainsName = "domains"

	// OwnedDomainsKey indexes (owner, name-hash) pairs.
	OwnedDomainsKey = collections.NewPrefix(2)

	// OwnedDomainsName is the name of the ownership index.
	OwnedDomainsName = "owned_domains"

	// PrimaryDomainsKey saves owner -> primary name-hash.
	PrimaryDomainsKey = collections.NewPrefix(3)

	// PrimaryDomainsName is the name of the primary domain collection.
	PrimaryDomainsName = "primary_domains"

	// UsedNoncesKey saves (user, nonce) pairs consumed by gasless actions.
	UsedNoncesKey = collections.NewPrefix(4)

	// UsedNoncesName is the name of the nonce ledger.
	UsedNoncesName = "used_nonces"
)

const (
	ModuleName = "nameservice"

	StoreKey = ModuleName

	// DefaultTLD is appended to every label before hashing.
	DefaultTLD = "motus"
)

// NameHash computes the ENS-style namehash of a dotted name.
func NameHash(name string) ethcommon.Hash {
	var node ethcommon.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = crypto.Keccak256Hash(node.Bytes(), crypto.Keccak256([]byte(labels[i])))
	}
	return node
}

// DomainHash returns the name-hash of label under tld.
func DomainHash(label, tld string) ethcommon.Hash {
	return NameHash(label + "." + tld)
}

// HashKey is the storage key form of a name-hash.
func HashKey(h ethcommon.Hash) string {
	return h.Hex()
}

// AddressKey is the storage key form of an account.
func AddressKey(addr ethcommon.Address) string {
	return strings.ToLower(addr.Hex())
}
