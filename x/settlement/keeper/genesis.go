package keeper

import (
	"context"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/settlement/types"
)

// InitGenesis initializes the module's state from a genesis state.
func (k *Keeper) InitGenesis(ctx context.Context, data *types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, data.Params); err != nil {
		return err
	}
	for _, b := range data.Balances {
		if err := k.Mint(ctx, b.Account, b.Token, b.Amount); err != nil {
			return err
		}
	}
	for _, s := range data.Stakers {
		if err := k.SetStaker(ctx, s, true); err != nil {
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

	balances, err := k.Balances.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer balances.Close()
	for ; balances.Valid(); balances.Next() {
		kv, err := balances.KeyValue()
		if err != nil {
			return nil, err
		}
		amount, ok := math.NewIntFromString(kv.Value)
		if !ok {
			return nil, types.ErrInvalidAmount
		}
		gs.Balances = append(gs.Balances, types.Balance{
			Account: ethcommon.HexToAddress(kv.Key.K1()),
			Token:   ethcommon.HexToAddress(kv.Key.K2()),
			Amount:  amount,
		})
	}

	stakers, err := k.Stakers.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer stakers.Close()
	for ; stakers.Valid(); stakers.Next() {
		key, err := stakers.Key()
		if err != nil {
			return nil, err
		}
		gs.Stakers = append(gs.Stakers, ethcommon.HexToAddress(key))
	}

	return gs, nil
}
