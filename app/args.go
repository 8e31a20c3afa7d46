package app

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// argReader walks ABI-decoded inputs in declaration order. The first type
// mismatch sticks in err and later reads return zero values.
type argReader struct {
	args []interface{}
	pos  int
	err  error
}

func newArgReader(args []interface{}) *argReader {
	return &argReader{args: args}
}

func (r *argReader) next(want string) interface{} {
	if r.err != nil {
		return nil
	}
	if r.pos >= len(r.args) {
		r.err = fmt.Errorf("%w: missing argument %d (%s)", ErrInvalidCall, r.pos, want)
		return nil
	}
	v := r.args[r.pos]
	r.pos++
	return v
}

func (r *argReader) fail(want string, got interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: argument %d is %T, want %s", ErrInvalidCall, r.pos-1, got, want)
	}
}

func (r *argReader) String() string {
	v := r.next("string")
	s, ok := v.(string)
	if !ok {
		r.fail("string", v)
	}
	return s
}

func (r *argReader) Int() math.Int {
	v := r.next("uint256")
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		r.fail("uint256", v)
		return math.ZeroInt()
	}
	return math.NewIntFromBigInt(b)
}

func (r *argReader) Uint64() uint64 {
	n := r.Int()
	if r.err != nil {
		return 0
	}
	if !n.IsUint64() {
		r.err = fmt.Errorf("%w: argument %d overflows uint64", ErrInvalidCall, r.pos-1)
		return 0
	}
	return n.Uint64()
}

func (r *argReader) Address() ethcommon.Address {
	v := r.next("address")
	addr, ok := v.(ethcommon.Address)
	if !ok {
		r.fail("address", v)
	}
	return addr
}

func (r *argReader) Hash() ethcommon.Hash {
	v := r.next("bytes32")
	b, ok := v.([32]byte)
	if !ok {
		r.fail("bytes32", v)
	}
	return ethcommon.Hash(b)
}

func (r *argReader) Bytes() []byte {
	v := r.next("bytes")
	b, ok := v.([]byte)
	if !ok {
		r.fail("bytes", v)
	}
	return b
}

func (r *argReader) Bool() bool {
	v := r.next("bool")
	b, ok := v.(bool)
	if !ok {
		r.fail("bool", v)
	}
	return b
}
