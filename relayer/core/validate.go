package core

import (
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/motus-labs/motus-name-service/app/txpolicy"
	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/relayer/db"
	relayerrors "github.com/motus-labs/motus-name-service/relayer/errors"
	"github.com/motus-labs/motus-name-service/utils/signature"
)

// userArg is the registry argument naming the account a gasless call acts for.
const userArg = "user"

// validated is a request that passed every check and is ready to submit.
type validated struct {
	user ethcommon.Address
	call *chains.PackedCall
}

// validate checks that req is an allowed registry call that the claimed user
// authorized this relayer to submit. It does not touch relay nonces.
func (s *Service) validate(requestID string, req *SubmitRequest) (*validated, error) {
	if !ethcommon.IsHexAddress(req.UserAddress) {
		return nil, relayerrors.NewValidationError(requestID, "userAddress is not a hex address")
	}
	user := ethcommon.HexToAddress(req.UserAddress)
	if user == (ethcommon.Address{}) {
		return nil, relayerrors.NewValidationError(requestID, "userAddress is the zero address")
	}

	if !ethcommon.IsHexAddress(req.ContractAddress) {
		return nil, relayerrors.NewValidationError(requestID, "contractAddress is not a hex address")
	}
	contract := ethcommon.HexToAddress(req.ContractAddress)
	if contract != s.submitter.ContractAddress() {
		return nil, relayerrors.NewValidationError(requestID, "unknown contract").
			WithContext("contract", contract.Hex())
	}

	if !txpolicy.IsGaslessFunction(req.FunctionName) {
		return nil, relayerrors.NewValidationError(requestID, fmt.Sprintf("function %q cannot be relayed", req.FunctionName))
	}

	call, err := chains.PackCall(s.registryABI, req.FunctionName, req.Args)
	if err != nil {
		return nil, relayerrors.WrapRelayError(err, relayerrors.ErrCodeValidation, requestID, "malformed arguments")
	}

	// the call must act for the same account that authorized the relay
	arg, ok := call.Arg(userArg)
	if !ok {
		return nil, relayerrors.NewValidationError(requestID, fmt.Sprintf("function %s has no %s argument", req.FunctionName, userArg))
	}
	if callUser, _ := arg.(ethcommon.Address); callUser != user {
		return nil, relayerrors.NewSignatureError(requestID, "call acts for a different user than userAddress")
	}

	sig, err := hexutil.Decode(strings.TrimSpace(req.Signature))
	if err != nil {
		return nil, relayerrors.WrapRelayError(err, relayerrors.ErrCodeSignature, requestID, "signature is not 0x-prefixed hex")
	}
	message := signature.RelayMessage(contract, req.FunctionName, call.ArgsHash, req.Nonce)
	if !signature.VerifyMessage(message, sig, user) {
		return nil, relayerrors.NewSignatureError(requestID, "relay signature does not recover to userAddress")
	}

	return &validated{user: user, call: call}, nil
}

// reserveNonce spends the user's relay nonce. The cache answers repeats
// without a database round trip; the unique index settles races.
func (s *Service) reserveNonce(requestID string, user ethcommon.Address, nonce uint64) error {
	key := replayKey(user, nonce)
	if s.replay.Contains(key) {
		return relayerrors.NewReplayError(requestID, fmt.Sprintf("relay nonce %d already used", nonce))
	}

	err := s.database.ReserveNonce(signature.FormatAddress(user), nonce, requestID)
	if err != nil {
		if relayerrors.Is(err, db.ErrNonceUsed) {
			s.replay.Add(key, struct{}{})
			return relayerrors.NewReplayError(requestID, fmt.Sprintf("relay nonce %d already used", nonce))
		}
		return relayerrors.NewDatabaseError(requestID, "failed to reserve relay nonce", err)
	}
	s.replay.Add(key, struct{}{})
	return nil
}

func replayKey(user ethcommon.Address, nonce uint64) string {
	return fmt.Sprintf("%s:%d", signature.FormatAddress(user), nonce)
}
