package keeper

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/motus-labs/motus-name-service/utils/signature"
	"github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// Register creates a domain for the caller, paid with attached native value.
func (k Keeper) Register(ctx context.Context, msg types.MsgRegister) (ethcommon.Hash, error) {
	var hash ethcommon.Hash
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		if msg.Caller == (ethcommon.Address{}) {
			return errorsmod.Wrap(types.ErrInvalidAddress, "caller cannot be zero")
		}

		p, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		hash, err = k.checkRegistrable(ctx, p, msg.Name, msg.Duration)
		if err != nil {
			return err
		}

		fee := types.RegistrationFee(p, msg.Name, msg.Duration)
		if err := k.collectValue(ctx, msg.Caller, msg.Value, fee); err != nil {
			return err
		}

		return k.createDomain(ctx, p, hash, msg.Caller, msg.Name, msg.Duration, msg.Resolver, msg.Metadata, fee, false)
	})
	return hash, err
}

// RegisterGasless creates a domain for msg.Auth.User. The user authorizes the
// action with a service signature and pays through the settlement engine with
// a separate payment signature; the submitter fronts execution costs.
func (k Keeper) RegisterGasless(ctx context.Context, msg types.MsgRegisterGasless) (ethcommon.Hash, error) {
	var hash ethcommon.Hash
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		p, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		instanceID, err := k.gaslessInstance(ctx, p)
		if err != nil {
			return err
		}
		if err := validateGaslessParties(msg.Submitter, msg.Auth); err != nil {
			return err
		}
		if err := k.checkNonce(ctx, msg.Auth.User, msg.Auth.Nonce); err != nil {
			return err
		}

		hash, err = k.checkRegistrable(ctx, p, msg.Name, msg.Duration)
		if err != nil {
			return err
		}

		fee := types.RegistrationFee(p, msg.Name, msg.Duration)
		amount := msg.Amount
		if amount.IsNil() || amount.LT(fee) {
			return errorsmod.Wrapf(types.ErrInsufficientPayment, "amount %s below fee %s", amount, fee)
		}

		params := signature.RegisterParams(msg.Name, msg.Duration, amount, msg.Auth.Nonce)
		if err := verifyService(instanceID, signature.ActionRegister, params, msg.Auth); err != nil {
			return err
		}

		if err := k.forwardPayment(ctx, p, msg.Auth.User, amount, msg.Payment); err != nil {
			return err
		}

		if err := k.createDomain(ctx, p, hash, msg.Auth.User, msg.Name, msg.Duration, msg.Resolver, msg.Metadata, amount, true); err != nil {
			return err
		}
		if err := k.markNonceUsed(ctx, msg.Auth.User, msg.Auth.Nonce); err != nil {
			return err
		}

		return k.payRelayIncentive(ctx, p, msg.Submitter, msg.Payment.PriorityFee)
	})
	return hash, err
}

// checkRegistrable validates name and duration and returns the name-hash if
// no unexpired record holds it.
func (k Keeper) checkRegistrable(ctx sdk.Context, p types.Params, name string, duration uint64) (ethcommon.Hash, error) {
	if err := p.ValidateName(name); err != nil {
		return ethcommon.Hash{}, err
	}
	if err := p.ValidateDuration(duration); err != nil {
		return ethcommon.Hash{}, err
	}

	hash := types.DomainHash(name, p.TLD)
	rec, found, err := k.getRecord(ctx, hash)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	if found && rec.State(ctx.BlockTime()) == types.StateActive {
		return ethcommon.Hash{}, errorsmod.Wrapf(types.ErrAlreadyRegistered, "%s.%s", name, p.TLD)
	}
	return hash, nil
}

// createDomain writes a fresh record for owner. An expired record under the
// same hash is replaced and removed from its previous owner's index.
func (k Keeper) createDomain(
	ctx sdk.Context,
	p types.Params,
	hash ethcommon.Hash,
	owner ethcommon.Address,
	name string,
	duration uint64,
	resolver ethcommon.Address,
	metadata string,
	paid math.Int,
	gasless bool,
) error {
	prev, found, err := k.getRecord(ctx, hash)
	if err != nil {
		return err
	}
	if found {
		if err := k.unindexOwner(ctx, prev.Owner, hash); err != nil {
			return err
		}
	}

	now := ctx.BlockTime().Unix()
	rec := types.DomainRecord{
		Name:         name,
		Owner:        owner,
		Resolver:     resolver,
		RegisteredAt: now,
		ExpiresAt:    now + int64(duration),
		Metadata:     metadata,
		Active:       true,
	}
	if err := k.setRecord(ctx, hash, rec); err != nil {
		return err
	}
	if err := k.indexOwner(ctx, owner, hash); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeDomainRegistered,
		sdk.NewAttribute(types.AttributeKeyName, name+"."+p.TLD),
		sdk.NewAttribute(types.AttributeKeyNameHash, types.HashKey(hash)),
		sdk.NewAttribute(types.AttributeKeyOwner, types.AddressKey(owner)),
		sdk.NewAttribute(types.AttributeKeyExpiresAt, strconv.FormatInt(rec.ExpiresAt, 10)),
		sdk.NewAttribute(types.AttributeKeyFee, paid.String()),
		sdk.NewAttribute(types.AttributeKeyGasless, strconv.FormatBool(gasless)),
	))

	k.logger.Info("domain registered", "name", name, "owner", owner.Hex(), "expires_at", rec.ExpiresAt, "gasless", gasless)
	return nil
}
