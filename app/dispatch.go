package app

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// dispatch maps a mutating registry call onto its keeper message. The caller
// of a gasless function is the submitter; the user comes from the arguments.
func (a *App) dispatch(ctx sdk.Context, method *abi.Method, from ethcommon.Address, value math.Int, r *argReader) ([]byte, error) {
	k := a.NameserviceKeeper

	switch method.Name {
	case nstypes.FnRegister:
		msg := nstypes.MsgRegister{
			Caller:   from,
			Value:    value,
			Name:     r.String(),
			Duration: r.Uint64(),
			Resolver: r.Address(),
			Metadata: r.String(),
		}
		if r.err != nil {
			return nil, r.err
		}
		hash, err := k.Register(ctx, msg)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(hash)

	case nstypes.FnRegisterGasless:
		msg := nstypes.MsgRegisterGasless{
			Submitter: from,
			Name:      r.String(),
			Duration:  r.Uint64(),
			Resolver:  r.Address(),
			Metadata:  r.String(),
		}
		msg.Auth.User = r.Address()
		msg.Amount = r.Int()
		msg.Auth.Nonce = r.Uint64()
		msg.Auth.Signature = r.Bytes()
		msg.Payment = readPaymentAuth(r)
		if r.err != nil {
			return nil, r.err
		}
		hash, err := k.RegisterGasless(ctx, msg)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(hash)

	case nstypes.FnRenew:
		msg := nstypes.MsgRenew{Caller: from, Value: value, NameHash: r.Hash(), Duration: r.Uint64()}
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.Renew(ctx, msg)

	case nstypes.FnRenewGasless:
		msg := nstypes.MsgRenewGasless{Submitter: from, NameHash: r.Hash(), Duration: r.Uint64()}
		msg.Auth.User = r.Address()
		msg.Amount = r.Int()
		msg.Auth.Nonce = r.Uint64()
		msg.Auth.Signature = r.Bytes()
		msg.Payment = readPaymentAuth(r)
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.RenewGasless(ctx, msg)

	case nstypes.FnTransfer:
		msg := nstypes.MsgTransfer{Caller: from, NameHash: r.Hash(), NewOwner: r.Address()}
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.Transfer(ctx, msg)

	case nstypes.FnTransferGasless:
		msg := nstypes.MsgTransferGasless{Submitter: from, NameHash: r.Hash(), NewOwner: r.Address()}
		msg.Auth.User = r.Address()
		msg.Auth.Nonce = r.Uint64()
		msg.Auth.Signature = r.Bytes()
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.TransferGasless(ctx, msg)

	case nstypes.FnSetResolver:
		msg := nstypes.MsgSetResolver{Caller: from, NameHash: r.Hash(), Resolver: r.Address()}
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.SetResolver(ctx, msg)

	case nstypes.FnSetMetadata:
		msg := nstypes.MsgSetMetadata{Caller: from, NameHash: r.Hash(), Metadata: r.String()}
		if r.err != nil {
			return nil, r.err
		}
		return nil, k.SetMetadata(ctx, msg)
	}

	return nil, fmt.Errorf("%w: unsupported function %s", ErrInvalidCall, method.Name)
}

func readPaymentAuth(r *argReader) nstypes.PaymentAuth {
	return nstypes.PaymentAuth{
		PriorityFee: r.Int(),
		Nonce:       r.Uint64(),
		Async:       r.Bool(),
		Signature:   r.Bytes(),
	}
}

// query answers a view function with ABI-encoded outputs.
func (a *App) query(ctx sdk.Context, method *abi.Method, r *argReader) ([]byte, error) {
	k := a.NameserviceKeeper

	switch method.Name {
	case nstypes.FnIsAvailable:
		name := r.String()
		if r.err != nil {
			return nil, r.err
		}
		available, err := k.IsAvailable(ctx, name)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(available)

	case nstypes.FnGetDomain:
		hash := r.Hash()
		if r.err != nil {
			return nil, r.err
		}
		rec, err := k.GetDomain(ctx, hash)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(
			rec.Owner,
			rec.Resolver,
			big.NewInt(rec.RegisteredAt),
			big.NewInt(rec.ExpiresAt),
			rec.Metadata,
			rec.Active,
		)

	case nstypes.FnGetOwnedDomains:
		owner := r.Address()
		if r.err != nil {
			return nil, r.err
		}
		hashes, err := k.GetOwnedDomains(ctx, owner)
		if err != nil {
			return nil, err
		}
		out := make([][32]byte, len(hashes))
		for i, h := range hashes {
			out[i] = h
		}
		return method.Outputs.Pack(out)

	case nstypes.FnGetPrimaryDomain:
		owner := r.Address()
		if r.err != nil {
			return nil, r.err
		}
		hash, err := k.GetPrimaryDomain(ctx, owner)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(hash)

	case nstypes.FnIsServiceNonceUsed:
		user, nonce := r.Address(), r.Uint64()
		if r.err != nil {
			return nil, r.err
		}
		used, err := k.IsServiceNonceUsed(ctx, user, nonce)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(used)

	case nstypes.FnCalculateRegistrationFee:
		name, duration := r.String(), r.Uint64()
		if r.err != nil {
			return nil, r.err
		}
		fee, err := k.CalculateRegistrationFee(ctx, name, duration)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(fee.BigInt())

	case nstypes.FnCalculateRenewalFee:
		duration := r.Uint64()
		if r.err != nil {
			return nil, r.err
		}
		fee, err := k.CalculateRenewalFee(ctx, duration)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(fee.BigInt())
	}

	return nil, fmt.Errorf("%w: unsupported view %s", ErrInvalidCall, method.Name)
}
