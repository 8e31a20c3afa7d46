package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// gaslessInstance returns the settlement instance ID signatures must be bound
// to, or ErrGaslessDisabled when the integration is switched off or has not
// been configured.
func (k Keeper) gaslessInstance(ctx context.Context, p types.Params) (uint64, error) {
	if !p.GaslessEnabled {
		return 0, errorsmod.Wrap(types.ErrGaslessDisabled, "disabled by params")
	}
	if k.engine == nil {
		return 0, errorsmod.Wrap(types.ErrGaslessDisabled, "no settlement engine")
	}
	id := k.engine.GetInstanceID(ctx)
	if id == 0 {
		return 0, errorsmod.Wrap(types.ErrGaslessDisabled, "settlement instance id is not configured")
	}
	return id, nil
}

// verifyService checks that auth.Signature authorizes action with params
// for auth.User under instanceID.
func verifyService(instanceID uint64, action string, params []string, auth types.ServiceAuth) error {
	if !signature.Verify(instanceID, action, params, auth.Signature, auth.User) {
		return errorsmod.Wrapf(types.ErrInvalidSignature, "%s signature does not match user %s", action, auth.User.Hex())
	}
	return nil
}

func validateGaslessParties(submitter ethcommon.Address, auth types.ServiceAuth) error {
	if submitter == (ethcommon.Address{}) {
		return errorsmod.Wrap(types.ErrInvalidAddress, "submitter cannot be zero")
	}
	if auth.User == (ethcommon.Address{}) {
		return errorsmod.Wrap(types.ErrInvalidAddress, "user cannot be zero")
	}
	return nil
}
