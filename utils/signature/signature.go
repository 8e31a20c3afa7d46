// Package signature builds the canonical messages of the name service protocol
// and signs/verifies them with EIP-191 personal-sign secp256k1 signatures.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Length of an [R || S || V] signature.
const Length = 65

var (
	ErrMalformedSignature = errors.New("malformed signature")
	ErrRecoveryFailed     = errors.New("signer recovery failed")
)

// Hash returns the EIP-191 digest of a canonical message.
func Hash(message string) []byte {
	return accounts.TextHash([]byte(message))
}

// Sign signs message with key. The returned V is 27 or 28, matching what
// wallets produce for personal_sign.
func Sign(key *ecdsa.PrivateKey, message string) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key is nil")
	}
	sig, err := crypto.Sign(Hash(message), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverSigner returns the address that produced sig over message.
func RecoverSigner(message string, sig []byte) (ethcommon.Address, error) {
	if len(sig) != Length {
		return ethcommon.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, Length, len(sig))
	}

	normalized := make([]byte, Length)
	copy(normalized, sig)
	v := normalized[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return ethcommon.Address{}, fmt.Errorf("%w: invalid recovery id %d", ErrMalformedSignature, sig[crypto.RecoveryIDOffset])
	}
	normalized[crypto.RecoveryIDOffset] = v

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return ethcommon.Address{}, fmt.Errorf("%w: r/s out of range", ErrMalformedSignature)
	}

	pub, err := crypto.SigToPub(Hash(message), normalized)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyMessage reports whether sig over message recovers to claimed. It never
// returns true for the zero address.
func VerifyMessage(message string, sig []byte, claimed ethcommon.Address) bool {
	if claimed == (ethcommon.Address{}) {
		return false
	}
	recovered, err := RecoverSigner(message, sig)
	if err != nil {
		return false
	}
	return recovered == claimed
}

// Verify checks a service action signature. A zero instance ID means the
// protocol deployment is unconfigured and always fails.
func Verify(instanceID uint64, action string, params []string, sig []byte, claimed ethcommon.Address) bool {
	if instanceID == 0 || action == "" {
		return false
	}
	return VerifyMessage(Build(instanceID, action, params...), sig, claimed)
}
