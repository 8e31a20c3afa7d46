package types

import (
	"fmt"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Balance is one funded (account, token) pair.
type Balance struct {
	Account ethcommon.Address `json:"account"`
	Token   ethcommon.Address `json:"token"`
	Amount  math.Int          `json:"amount"`
}

// GenesisState seeds the engine with balances and stakers.
type GenesisState struct {
	Params   Params              `json:"params"`
	Balances []Balance           `json:"balances"`
	Stakers  []ethcommon.Address `json:"stakers"`
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
	for _, b := range gs.Balances {
		if b.Amount.IsNil() || b.Amount.IsNegative() {
			return fmt.Errorf("balance of %s in %s is invalid", b.Account.Hex(), b.Token.Hex())
		}
	}
	return nil
}
