package group

import (
	"crypto/rand"
	"io"

	"github.com/zeebo/blake3"
)

// SeedLen is the number of entropy bytes a fresh Rand is seeded with.
const SeedLen = 32

// Rand is a deterministic random bit generator reading the BLAKE3
// extendable output of its seed. A Rand is not safe for concurrent use;
// every session owns its own.
type Rand struct {
	d *blake3.Digest
}

// NewRand returns a Rand whose output is fully determined by seed.
func NewRand(seed []byte) *Rand {
	h := blake3.New()
	// blake3 hasher writes never fail
	_, _ = h.Write(seed)
	return &Rand{d: h.Digest()}
}

// NewEntropyRand returns a Rand seeded from crypto/rand.
func NewEntropyRand() (*Rand, error) {
	seed := make([]byte, SeedLen)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, err
	}
	return NewRand(seed), nil
}

// Read fills p with the next len(p) bytes of output.
func (r *Rand) Read(p []byte) (int, error) {
	return r.d.Read(p)
}
