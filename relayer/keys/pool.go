package keys

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"sort"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoSigners is returned when a pool is built without keys.
	ErrNoSigners = errors.New("no relayer signers configured")

	// ErrAllExcluded is returned when every signer was excluded by the caller.
	ErrAllExcluded = errors.New("no eligible relayer signer")
)

// waitInterval is how long Acquire sleeps when every signer is busy.
const waitInterval = 20 * time.Millisecond

// Pool hands out relayer signers, least recently used first. A leased signer
// is held exclusively until released.
type Pool struct {
	mu      sync.Mutex
	signers []*Signer
	now     func() time.Time
}

// NewPool builds a pool from keys. Duplicate keys are kept once.
func NewPool(keys []*ecdsa.PrivateKey) (*Pool, error) {
	if len(keys) == 0 {
		return nil, ErrNoSigners
	}

	seen := make(map[ethcommon.Address]struct{}, len(keys))
	p := &Pool{now: time.Now}
	for _, key := range keys {
		s := newSigner(key)
		if _, ok := seen[s.address]; ok {
			continue
		}
		seen[s.address] = struct{}{}
		p.signers = append(p.signers, s)
	}
	return p, nil
}

// Addresses lists the pool's accounts.
func (p *Pool) Addresses() []ethcommon.Address {
	out := make([]ethcommon.Address, 0, len(p.signers))
	for _, s := range p.signers {
		out = append(out, s.address)
	}
	return out
}

// Size is the number of signers.
func (p *Pool) Size() int {
	return len(p.signers)
}

// Acquire leases the least recently used free signer not in exclude. It
// waits while all eligible signers are busy and gives up when ctx ends.
func (p *Pool) Acquire(ctx context.Context, exclude map[ethcommon.Address]bool) (*Signer, error) {
	for {
		candidates := p.byLastUse(exclude)
		if len(candidates) == 0 {
			return nil, ErrAllExcluded
		}

		for _, s := range candidates {
			if s.mu.TryLock() {
				return s, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitInterval):
		}
	}
}

// Release returns a leased signer to the pool.
func (p *Pool) Release(s *Signer) {
	p.mu.Lock()
	s.lastUsed = p.now()
	p.mu.Unlock()
	s.mu.Unlock()
}

func (p *Pool) byLastUse(exclude map[ethcommon.Address]bool) []*Signer {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Signer, 0, len(p.signers))
	for _, s := range p.signers {
		if !exclude[s.address] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].lastUsed.Before(out[j].lastUsed)
	})
	return out
}
