// Package intent builds signed relay requests the way a wallet or client
// would, for tooling and tests.
package intent

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/core"
	"github.com/motus-labs/motus-name-service/utils/signature"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

// Registration describes a gasless registration to sign.
type Registration struct {
	Name     string
	Duration uint64
	Resolver ethcommon.Address
	Metadata string

	// Amount is the fee the user authorizes. Nil uses the default schedule.
	Amount      *big.Int
	PriorityFee *big.Int

	// Nonce is used for both the service and the payment leg.
	Nonce uint64
	Async bool

	InstanceID uint64
	Registry   ethcommon.Address
	FeeToken   ethcommon.Address
}

// RegisterArgs signs reg with key and returns registerGasless arguments in
// the JSON form the relay API accepts.
func RegisterArgs(key *ecdsa.PrivateKey, reg Registration) ([]json.RawMessage, error) {
	if reg.Duration == 0 {
		reg.Duration = nstypes.Year
	}
	var amount math.Int
	if reg.Amount != nil {
		amount = math.NewIntFromBigInt(reg.Amount)
	} else {
		amount = nstypes.RegistrationFee(nstypes.DefaultParams(), reg.Name, reg.Duration)
	}
	priority := math.ZeroInt()
	if reg.PriorityFee != nil {
		priority = math.NewIntFromBigInt(reg.PriorityFee)
	}

	serviceSig, err := signature.Sign(key, signature.RegisterMessage(reg.InstanceID, reg.Name, reg.Duration, amount, reg.Nonce))
	if err != nil {
		return nil, err
	}
	paymentSig, err := signature.Sign(key, signature.PaymentMessage(
		reg.InstanceID, reg.Registry, reg.FeeToken, amount, priority, reg.Nonce, reg.Async, reg.Registry,
	))
	if err != nil {
		return nil, err
	}

	user := crypto.PubkeyToAddress(key.PublicKey)
	return encodeArgs(
		reg.Name, reg.Duration, reg.Resolver.Hex(), reg.Metadata,
		user.Hex(), amount.String(), reg.Nonce, hexutil.Encode(serviceSig),
		priority.String(), reg.Nonce, reg.Async, hexutil.Encode(paymentSig),
	)
}

// Sign wraps a registry call in a relay request authorized by key.
func Sign(key *ecdsa.PrivateKey, registryABI abi.ABI, contract ethcommon.Address, function string, args []json.RawMessage, relayNonce uint64) (*core.SubmitRequest, error) {
	call, err := chains.PackCall(registryABI, function, args)
	if err != nil {
		return nil, err
	}
	sig, err := signature.Sign(key, signature.RelayMessage(contract, function, call.ArgsHash, relayNonce))
	if err != nil {
		return nil, err
	}
	return &core.SubmitRequest{
		UserAddress:     crypto.PubkeyToAddress(key.PublicKey).Hex(),
		ContractAddress: contract.Hex(),
		FunctionName:    function,
		Args:            args,
		Signature:       hexutil.Encode(sig),
		Nonce:           relayNonce,
	}, nil
}

func encodeArgs(values ...interface{}) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		bz, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = bz
	}
	return out, nil
}
