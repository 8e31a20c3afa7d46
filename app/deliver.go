package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidCall covers calldata that does not decode against the registry ABI.
	ErrInvalidCall = errors.New("invalid call")
	// ErrNotPayable is returned when value is attached to a non-payable function.
	ErrNotPayable = errors.New("function is not payable")
)

// Tx is one call into the registry.
type Tx struct {
	From  ethcommon.Address
	Value *big.Int
	Data  []byte
}

// Deliver executes tx as a block of its own. Reverted calls still produce a
// committed receipt; the returned error is the revert reason.
func (a *App) Deliver(ctx context.Context, tx Tx) (Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sdkCtx, cache := a.newContext(ctx)
	receipt := Receipt{
		TxHash: txHash(sdkCtx.BlockHeight(), tx),
		Height: sdkCtx.BlockHeight(),
		From:   tx.From,
		Status: ReceiptStatusSuccessful,
	}

	method, ret, execErr := a.execute(sdkCtx, tx)
	if method != nil {
		receipt.Function = method.Name
	}
	if execErr != nil {
		// drop every write of the failed call and record only the receipt
		sdkCtx, cache = a.newContext(ctx)
		receipt.Status = ReceiptStatusFailed
		receipt.Error = execErr.Error()
		a.logger.Debug("transaction reverted", "tx_hash", receipt.TxHash.Hex(), "error", execErr)
	} else {
		receipt.Return = ret
		receipt.Events = flattenEvents(sdkCtx.EventManager().Events())
	}

	if err := a.storeReceipt(sdkCtx, receipt); err != nil {
		return Receipt{}, fmt.Errorf("failed to store receipt: %w", err)
	}
	cache.Write()
	a.cms.Commit()

	return receipt, execErr
}

// Call runs a read-only registry function against committed state and returns
// its ABI-encoded outputs.
func (a *App) Call(ctx context.Context, data []byte) ([]byte, error) {
	var out []byte
	err := a.View(ctx, func(sdkCtx sdk.Context) error {
		method, args, err := a.decode(data)
		if err != nil {
			return err
		}
		if !method.IsConstant() {
			return fmt.Errorf("%w: %s is not a view function", ErrInvalidCall, method.Name)
		}
		out, err = a.query(sdkCtx, method, newArgReader(args))
		return err
	})
	return out, err
}

func (a *App) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: calldata shorter than a selector", ErrInvalidCall)
	}
	method, err := a.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCall, err)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return method, nil, fmt.Errorf("%w: %s: %v", ErrInvalidCall, method.Name, err)
	}
	return method, args, nil
}

func (a *App) execute(ctx sdk.Context, tx Tx) (*abi.Method, []byte, error) {
	method, args, err := a.decode(tx.Data)
	if err != nil {
		return method, nil, err
	}

	value := math.ZeroInt()
	if tx.Value != nil {
		value = math.NewIntFromBigInt(tx.Value)
	}
	if value.IsPositive() && !method.IsPayable() {
		return method, nil, fmt.Errorf("%w: %s", ErrNotPayable, method.Name)
	}

	r := newArgReader(args)
	if method.IsConstant() {
		ret, err := a.query(ctx, method, r)
		return method, ret, err
	}
	ret, err := a.dispatch(ctx, method, tx.From, value, r)
	return method, ret, err
}
