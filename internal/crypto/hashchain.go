package crypto

import (
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashChain derives pads in counter mode over a hash function:
// block 0 is H(index || seed), block i is H(block i-1), and the pad is
// the concatenation of blocks truncated to the requested length.
type HashChain struct {
	name    string
	newHash func() hash.Hash
}

func NewBlake3Chain() HashChain {
	return HashChain{name: Blake3Chain, newHash: func() hash.Hash { return blake3.New() }}
}

func NewBlake2bChain() HashChain {
	return HashChain{name: Blake2bChain, newHash: func() hash.Hash {
		// only a bad key can make New256 fail
		h, _ := blake2b.New256(nil)
		return h
	}}
}

func NewSHA3Chain() HashChain {
	return HashChain{name: SHA3Chain, newHash: sha3.New256}
}

func (c HashChain) Name() string { return c.name }

func (c HashChain) Derive(dst []byte, index uint32, seed []byte) {
	h := c.newHash()
	h.Write(indexBytes(index))
	h.Write(seed)
	block := h.Sum(nil)

	n := copy(dst, block)
	for n < len(dst) {
		h.Reset()
		h.Write(block)
		block = h.Sum(block[:0])
		n += copy(dst[n:], block)
	}
}
