package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	sdk "github.com/cosmos/cosmos-sdk/types"

	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

// ErrAlreadyInitialized is returned by InitChain on a ledger with history.
var ErrAlreadyInitialized = errors.New("ledger already initialized")

// GenesisState is the initial state of every module.
type GenesisState struct {
	Nameservice *nstypes.GenesisState `json:"nameservice"`
	Settlement  *sttypes.GenesisState `json:"settlement"`

	// StakeRegistry makes the registry incentive-eligible so gasless
	// submitters earn relay rewards.
	StakeRegistry bool `json:"stake_registry"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() GenesisState {
	return GenesisState{
		Nameservice:   nstypes.DefaultGenesis(),
		Settlement:    sttypes.DefaultGenesis(),
		StakeRegistry: true,
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if gs.Nameservice == nil || gs.Settlement == nil {
		return errors.New("genesis must set every module")
	}
	if err := gs.Nameservice.Validate(); err != nil {
		return fmt.Errorf("nameservice: %w", err)
	}
	if err := gs.Settlement.Validate(); err != nil {
		return fmt.Errorf("settlement: %w", err)
	}
	return nil
}

// LoadGenesis reads a genesis file.
func LoadGenesis(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return GenesisState{}, err
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return GenesisState{}, fmt.Errorf("failed to decode genesis: %w", err)
	}
	return gs, gs.Validate()
}

// InitChain writes genesis as the first block. It refuses to run twice.
func (a *App) InitChain(ctx context.Context, gs GenesisState) error {
	if a.Height() > 0 {
		return ErrAlreadyInitialized
	}
	if err := gs.Validate(); err != nil {
		return err
	}

	return a.Update(ctx, func(ctx sdk.Context) error {
		if err := a.SettlementKeeper.InitGenesis(ctx, gs.Settlement); err != nil {
			return err
		}
		if gs.StakeRegistry {
			if err := a.SettlementKeeper.SetStaker(ctx, a.registry, true); err != nil {
				return err
			}
		}
		return a.NameserviceKeeper.InitGenesis(ctx, gs.Nameservice)
	})
}

// ExportGenesis snapshots committed state.
func (a *App) ExportGenesis(ctx context.Context) (GenesisState, error) {
	var gs GenesisState
	err := a.View(ctx, func(ctx sdk.Context) error {
		ns, err := a.NameserviceKeeper.ExportGenesis(ctx)
		if err != nil {
			return err
		}
		st, err := a.SettlementKeeper.ExportGenesis(ctx)
		if err != nil {
			return err
		}
		gs = GenesisState{Nameservice: ns, Settlement: st}
		return nil
	})
	return gs, err
}
