package keys

import (
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is one funded relayer account. Its lock serializes submissions so
// the locally tracked account nonce never races.
type Signer struct {
	address ethcommon.Address
	key     *ecdsa.PrivateKey

	mu sync.Mutex

	// guarded by mu
	nonce      uint64
	nonceKnown bool

	// guarded by Pool.mu
	lastUsed time.Time
}

func newSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
}

// Address returns the signer's account.
func (s *Signer) Address() ethcommon.Address {
	return s.address
}

// SignTx signs tx for chainID with EIP-155 replay protection.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewEIP155Signer(chainID), s.key)
}

// NextNonce returns the account nonce to use for the next transaction. The
// first call, and the first call after ResetNonce, asks fetch for the
// chain's pending nonce. The caller must hold the signer's lease.
func (s *Signer) NextNonce(fetch func() (uint64, error)) (uint64, error) {
	if !s.nonceKnown {
		n, err := fetch()
		if err != nil {
			return 0, err
		}
		s.nonce = n
		s.nonceKnown = true
	}
	return s.nonce, nil
}

// ConfirmNonce records that nonce was consumed by a sent transaction.
func (s *Signer) ConfirmNonce(nonce uint64) {
	s.nonce = nonce + 1
	s.nonceKnown = true
}

// ResetNonce forgets the tracked nonce so the next transaction refetches it.
func (s *Signer) ResetNonce() {
	s.nonceKnown = false
}
