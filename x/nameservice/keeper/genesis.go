package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// InitGenesis initializes the module's state from a genesis state. The
// ownership index is rebuilt from the record owners.
func (k *Keeper) InitGenesis(ctx context.Context, data *types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	if err := k.SetParams(ctx, data.Params); err != nil {
		return err
	}

	for _, d := range data.Domains {
		if err := k.setRecord(ctx, d.NameHash, d.Record); err != nil {
			return err
		}
		if err := k.OwnedDomains.Set(ctx, collections.Join(types.AddressKey(d.Record.Owner), types.HashKey(d.NameHash))); err != nil {
			return err
		}
	}
	for _, p := range data.Primaries {
		if err := k.PrimaryDomains.Set(ctx, types.AddressKey(p.Owner), types.HashKey(p.NameHash)); err != nil {
			return err
		}
	}
	for _, n := range data.Nonces {
		if err := k.UsedNonces.Set(ctx, collections.Join(types.AddressKey(n.User), n.Nonce)); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis exports the module's state to a genesis state.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{Params: params}

	domains, err := k.Domains.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer domains.Close()
	for ; domains.Valid(); domains.Next() {
		kv, err := domains.KeyValue()
		if err != nil {
			return nil, err
		}
		var rec types.DomainRecord
		if err := json.Unmarshal([]byte(kv.Value), &rec); err != nil {
			return nil, errorsmod.Wrapf(err, "failed to decode domain %s", kv.Key)
		}
		gs.Domains = append(gs.Domains, types.DomainEntry{NameHash: ethcommon.HexToHash(kv.Key), Record: rec})
	}

	primaries, err := k.PrimaryDomains.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer primaries.Close()
	for ; primaries.Valid(); primaries.Next() {
		kv, err := primaries.KeyValue()
		if err != nil {
			return nil, err
		}
		gs.Primaries = append(gs.Primaries, types.PrimaryEntry{
			Owner:    ethcommon.HexToAddress(kv.Key),
			NameHash: ethcommon.HexToHash(kv.Value),
		})
	}

	nonces, err := k.UsedNonces.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer nonces.Close()
	for ; nonces.Valid(); nonces.Next() {
		key, err := nonces.Key()
		if err != nil {
			return nil, err
		}
		gs.Nonces = append(gs.Nonces, types.NonceEntry{User: ethcommon.HexToAddress(key.K1()), Nonce: key.K2()})
	}

	return gs, nil
}
