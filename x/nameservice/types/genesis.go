package types

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// DomainEntry pairs a record with its storage hash.
type DomainEntry struct {
	NameHash ethcommon.Hash `json:"name_hash"`
	Record   DomainRecord   `json:"record"`
}

// PrimaryEntry is one owner -> primary domain pointer.
type PrimaryEntry struct {
	Owner    ethcommon.Address `json:"owner"`
	NameHash ethcommon.Hash    `json:"name_hash"`
}

// NonceEntry is one consumed service nonce.
type NonceEntry struct {
	User  ethcommon.Address `json:"user"`
	Nonce uint64            `json:"nonce"`
}

// GenesisState is the exportable state of the registry.
type GenesisState struct {
	Params    Params         `json:"params"`
	Domains   []DomainEntry  `json:"domains"`
	Primaries []PrimaryEntry `json:"primaries"`
	Nonces    []NonceEntry   `json:"nonces"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	seen := make(map[ethcommon.Hash]struct{}, len(gs.Domains))
	for _, d := range gs.Domains {
		if _, dup := seen[d.NameHash]; dup {
			return fmt.Errorf("duplicate domain %s", d.NameHash.Hex())
		}
		seen[d.NameHash] = struct{}{}
		if d.Record.Owner == (ethcommon.Address{}) {
			return fmt.Errorf("domain %s has no owner", d.NameHash.Hex())
		}
		if DomainHash(d.Record.Name, gs.Params.TLD) != d.NameHash {
			return fmt.Errorf("domain %s does not hash to %s", d.Record.Name, d.NameHash.Hex())
		}
	}
	for _, p := range gs.Primaries {
		if _, ok := seen[p.NameHash]; !ok {
			return fmt.Errorf("primary domain %s of %s is unknown", p.NameHash.Hex(), p.Owner.Hex())
		}
	}
	return nil
}
