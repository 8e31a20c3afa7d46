package chains

import (
	"encoding/json"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nstypes "github.com/motus-labs/motus-name-service/x/nameservice/types"
)

func rawArgs(t *testing.T, args ...interface{}) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		require.NoError(t, err)
		out[i] = b
	}
	return out
}

func TestPackCallMatchesABIPack(t *testing.T) {
	registry, err := nstypes.ParseRegistryABI()
	require.NoError(t, err)

	user := ethcommon.HexToAddress("0x00000000000000000000000000000000000000ab")
	sig := make([]byte, 65)
	sig[64] = 27

	call, err := PackCall(registry, nstypes.FnRegisterGasless, rawArgs(t,
		"clinic1", 31536000, "0x0000000000000000000000000000000000000000", "{}",
		user.Hex(), "1000000000000000000000", "0x7", "0x"+ethcommon.Bytes2Hex(sig),
		json.Number("0"), "1", true, "0x"+ethcommon.Bytes2Hex(sig),
	))
	require.NoError(t, err)

	amount, _ := new(big.Int).SetString("1000000000000000000000", 10)
	want, err := registry.Pack(nstypes.FnRegisterGasless,
		"clinic1", big.NewInt(31536000), ethcommon.Address{}, "{}",
		user, amount, big.NewInt(7), sig,
		big.NewInt(0), big.NewInt(1), true, sig,
	)
	require.NoError(t, err)

	assert.Equal(t, want, call.Data)
	assert.Equal(t, crypto.Keccak256Hash(want[4:]), call.ArgsHash)
	assert.Equal(t, nstypes.FnRegisterGasless, call.Method.Name)

	got, ok := call.Arg("user")
	require.True(t, ok)
	assert.Equal(t, user, got)
	_, ok = call.Arg("nope")
	assert.False(t, ok)
}

func TestPackCallHashArgument(t *testing.T) {
	registry, err := nstypes.ParseRegistryABI()
	require.NoError(t, err)

	hash := nstypes.DomainHash("gerry", nstypes.DefaultTLD)
	call, err := PackCall(registry, nstypes.FnTransfer, rawArgs(t, hash.Hex(), "0x00000000000000000000000000000000000000cd"))
	require.NoError(t, err)

	want, err := registry.Pack(nstypes.FnTransfer, hash, ethcommon.HexToAddress("0xcd"))
	require.NoError(t, err)
	assert.Equal(t, want, call.Data)
}

func TestPackCallRejects(t *testing.T) {
	registry, err := nstypes.ParseRegistryABI()
	require.NoError(t, err)
	hash := nstypes.DomainHash("gerry", nstypes.DefaultTLD).Hex()

	tests := []struct {
		name     string
		function string
		args     []json.RawMessage
		errMsg   string
	}{
		{"unknown function", "selfdestruct", nil, "unknown function"},
		{"wrong arity", nstypes.FnTransfer, rawArgs(t, hash), "takes 2 arguments"},
		{"bad address", nstypes.FnTransfer, rawArgs(t, hash, "bob"), "not a hex address"},
		{"short hash", nstypes.FnTransfer, rawArgs(t, "0x1234", "0x00000000000000000000000000000000000000cd"), "expected 32 bytes"},
		{"negative uint", nstypes.FnRenew, rawArgs(t, hash, -1), "out of range"},
		{"non-numeric uint", nstypes.FnRenew, rawArgs(t, hash, "soon"), "not an integer"},
		{"malformed json", nstypes.FnTransfer, []json.RawMessage{json.RawMessage(`{`), json.RawMessage(`"x"`)}, "argument 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PackCall(registry, tc.function, tc.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
