package intent

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motus-labs/motus-name-service/app"
	"github.com/motus-labs/motus-name-service/relayer/chains"
	"github.com/motus-labs/motus-name-service/utils/signature"
	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
	sttypes "github.com/motus-labs/motus-name-service/x/settlement/types"
)

func TestRegisterArgsAreAcceptedByTheLedger(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	user := crypto.PubkeyToAddress(key.PublicKey)

	ledger, err := app.New(log.NewNopLogger(), ethcommon.HexToAddress("0xad"))
	require.NoError(t, err)
	defer ledger.Close()

	gs := app.DefaultGenesis()
	gs.Settlement.Balances = []sttypes.Balance{
		{Account: user, Token: nstypes.DefaultFeeToken, Amount: math.NewInt(1_000_000_000_000_000_000)},
	}
	require.NoError(t, ledger.InitChain(context.Background(), gs))

	args, err := RegisterArgs(key, Registration{
		Name:       "gerry",
		Nonce:      3,
		Async:      true,
		InstanceID: sttypes.DefaultParams().InstanceID,
		Registry:   app.RegistryAddress(),
		FeeToken:   nstypes.DefaultFeeToken,
	})
	require.NoError(t, err)
	require.Len(t, args, 12)

	call, err := chains.PackCall(ledger.ABI(), nstypes.FnRegisterGasless, args)
	require.NoError(t, err)

	receipt, err := ledger.Deliver(context.Background(), app.Tx{From: ethcommon.HexToAddress("0xcc"), Data: call.Data})
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
}

func TestSignBindsTheExactCall(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	registryABI, err := nstypes.ParseRegistryABI()
	require.NoError(t, err)
	contract := ethcommon.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	args, err := RegisterArgs(key, Registration{Name: "gerry", Nonce: 1, InstanceID: 1, Registry: contract})
	require.NoError(t, err)

	req, err := Sign(key, registryABI, contract, nstypes.FnRegisterGasless, args, 9)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), req.UserAddress)
	assert.Equal(t, contract.Hex(), req.ContractAddress)
	assert.Equal(t, uint64(9), req.Nonce)

	call, err := chains.PackCall(registryABI, nstypes.FnRegisterGasless, req.Args)
	require.NoError(t, err)
	sig, err := hexutil.Decode(req.Signature)
	require.NoError(t, err)

	msg := signature.RelayMessage(contract, nstypes.FnRegisterGasless, call.ArgsHash, 9)
	assert.True(t, signature.VerifyMessage(msg, sig, crypto.PubkeyToAddress(key.PublicKey)))
	assert.False(t, signature.VerifyMessage(
		signature.RelayMessage(contract, nstypes.FnRegisterGasless, call.ArgsHash, 10),
		sig, crypto.PubkeyToAddress(key.PublicKey)))

	_, err = Sign(key, registryABI, contract, nstypes.FnRegisterGasless, args[:2], 9)
	assert.Error(t, err)
}
