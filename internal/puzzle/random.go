package puzzle

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SeededRand returns a generator whose output depends only on seed.
// The stream is stable across processes and platforms.
func SeededRand(seed string) *rand.Rand {
	return rand.New(rand.NewPCG(xxhash.Sum64String(seed), xxhash.Sum64String("pcg:"+seed)))
}

// NewRandom returns a generator seeded from the operating system that may
// be shared between goroutines.
func NewRandom() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(&lockedSource{src: rand.NewChaCha8(seed)})
}

// lockedSource serializes access to src. rand.Rand keeps no state of its own
// beyond the source, so wrapping the source is enough.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	v := s.src.Uint64()
	s.mu.Unlock()
	return v
}
