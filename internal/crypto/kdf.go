package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/optable/otlib/internal/util"
)

// Names of the available key derivations.
const (
	Blake3Chain  = "blake3"
	Blake2bChain = "blake2b"
	SHA3Chain    = "sha3"
	AESCTR       = "aes"
)

// KeyDerivation stretches a short seed into a pad of any length.
// Derive must be a pure function of (len(dst), index, seed), and distinct
// indexes must yield independent pads for the same seed. Both parties of
// a protocol run must use the same KeyDerivation.
type KeyDerivation interface {
	Name() string
	Derive(dst []byte, index uint32, seed []byte)
}

// New returns the named KeyDerivation. The empty name selects the default.
func New(name string) (KeyDerivation, error) {
	switch name {
	case Blake3Chain, "":
		return NewBlake3Chain(), nil
	case Blake2bChain:
		return NewBlake2bChain(), nil
	case SHA3Chain:
		return NewSHA3Chain(), nil
	case AESCTR:
		return NewAESCTR(), nil
	default:
		return nil, fmt.Errorf("unknown key derivation %q", name)
	}
}

// Mask xors msg with the pad derived from (index, seed) and returns
// the result in a fresh slice, leaving msg untouched.
func Mask(kdf KeyDerivation, index uint32, seed, msg []byte) []byte {
	out := make([]byte, len(msg))
	kdf.Derive(out, index, seed)
	util.Xor(out, msg)
	return out
}

func indexBytes(index uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], index)
	return b[:]
}
