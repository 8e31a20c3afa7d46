package chains

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cast"
)

// PackedCall is a registry call ready to submit.
type PackedCall struct {
	Method *abi.Method
	Args   []interface{}
	// Data is the full calldata, selector included.
	Data []byte
	// ArgsHash is keccak256 of the encoded arguments without the selector.
	ArgsHash ethcommon.Hash
}

// Arg returns the decoded argument called name.
func (c *PackedCall) Arg(name string) (interface{}, bool) {
	for i, in := range c.Method.Inputs {
		if in.Name == name {
			return c.Args[i], true
		}
	}
	return nil, false
}

// PackCall converts positional JSON arguments into the Go types the ABI
// expects for function and encodes the call. Integers may be JSON numbers or
// decimal/0x strings; addresses, hashes and bytes are 0x hex strings.
func PackCall(contract abi.ABI, function string, raw []json.RawMessage) (*PackedCall, error) {
	method, ok := contract.Methods[function]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", function)
	}
	if len(raw) != len(method.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", function, len(method.Inputs), len(raw))
	}

	args := make([]interface{}, len(raw))
	for i, in := range method.Inputs {
		v, err := decodeJSON(raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Name, err)
		}
		args[i], err = coerce(in.Type, v)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Name, err)
		}
	}

	encoded, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s arguments: %w", function, err)
	}

	data := make([]byte, 0, len(method.ID)+len(encoded))
	data = append(data, method.ID...)
	data = append(data, encoded...)

	return &PackedCall{
		Method:   &method,
		Args:     args,
		Data:     data,
		ArgsHash: crypto.Keccak256Hash(encoded),
	}, nil
}

func decodeJSON(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func coerce(t abi.Type, v interface{}) (interface{}, error) {
	switch t.T {
	case abi.StringTy:
		return cast.ToStringE(v)

	case abi.BoolTy:
		return cast.ToBoolE(v)

	case abi.UintTy:
		n, err := toBig(v)
		if err != nil {
			return nil, err
		}
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s out of range for uint%d", n, t.Size)
		}
		if t.Size > 64 {
			return n, nil
		}
		return cast.ToUint64E(n.String())

	case abi.AddressTy:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		if !ethcommon.IsHexAddress(s) {
			return nil, fmt.Errorf("%q is not a hex address", s)
		}
		return ethcommon.HexToAddress(s), nil

	case abi.FixedBytesTy:
		if t.Size != 32 {
			return nil, fmt.Errorf("unsupported type %s", t.String())
		}
		b, err := hexBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("expected 32 bytes, got %d", len(b))
		}
		var out [32]byte
		copy(out[:], b)
		return out, nil

	case abi.BytesTy:
		return hexBytes(v)

	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func toBig(v interface{}) (*big.Int, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

func hexBytes(v interface{}) ([]byte, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}
