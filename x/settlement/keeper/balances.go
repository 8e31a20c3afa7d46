package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/x/settlement/types"
)

func balanceKey(account, token ethcommon.Address) collections.Pair[string, string] {
	return collections.Join(types.AccountKey(account), types.AccountKey(token))
}

// Balance returns account's holding of token.
func (k Keeper) Balance(ctx context.Context, account, token ethcommon.Address) (math.Int, error) {
	raw, err := k.Balances.Get(ctx, balanceKey(account, token))
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return math.ZeroInt(), nil
		}
		return math.Int{}, err
	}
	amount, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, errorsmod.Wrapf(types.ErrInvalidAmount, "stored balance %q", raw)
	}
	return amount, nil
}

func (k Keeper) setBalance(ctx context.Context, account, token ethcommon.Address, amount math.Int) error {
	if amount.IsZero() {
		return k.Balances.Remove(ctx, balanceKey(account, token))
	}
	return k.Balances.Set(ctx, balanceKey(account, token), amount.String())
}

// Mint credits amount of token to account.
func (k Keeper) Mint(ctx context.Context, account, token ethcommon.Address, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "%s", amount)
	}
	bal, err := k.Balance(ctx, account, token)
	if err != nil {
		return err
	}
	return k.setBalance(ctx, account, token, bal.Add(amount))
}

// Transfer moves amount of token between two accounts. It carries no
// signature and is only reachable from inside the ledger.
func (k Keeper) Transfer(ctx context.Context, from, to, token ethcommon.Address, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "%s", amount)
	}
	if amount.IsZero() || from == to {
		return nil
	}

	fromBal, err := k.Balance(ctx, from, token)
	if err != nil {
		return err
	}
	if fromBal.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientBalance, "%s holds %s of %s, needs %s", from.Hex(), fromBal, token.Hex(), amount)
	}
	toBal, err := k.Balance(ctx, to, token)
	if err != nil {
		return err
	}

	if err := k.setBalance(ctx, from, token, fromBal.Sub(amount)); err != nil {
		return err
	}
	return k.setBalance(ctx, to, token, toBal.Add(amount))
}
