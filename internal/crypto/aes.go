package crypto

import (
	"crypto/aes"
	"crypto/cipher"
)

// fixedKey is a public AES-128 key (the first digits of pi).
var fixedKey = []byte{
	0x24, 0x3f, 0x6a, 0x88, 0x85, 0xa3, 0x08, 0xd3,
	0x13, 0x19, 0x8a, 0x2e, 0x03, 0x70, 0x73, 0x44,
}

// AESCTRDerivation derives pads with AES: the index, the seed length and
// the seed are compressed into a 16 byte key by CBC-MAC under a fixed
// public key, and the pad is the AES-CTR keystream under that key.
type AESCTRDerivation struct {
	mac cipher.Block
}

func NewAESCTR() AESCTRDerivation {
	block, err := aes.NewCipher(fixedKey)
	if err != nil {
		panic(err)
	}
	return AESCTRDerivation{mac: block}
}

func (AESCTRDerivation) Name() string { return AESCTR }

// key compresses index || len(seed) || seed, zero padded to whole blocks.
func (a AESCTRDerivation) key(index uint32, seed []byte) []byte {
	in := make([]byte, 8+len(seed)+aes.BlockSize-(8+len(seed))%aes.BlockSize)
	copy(in, indexBytes(index))
	copy(in[4:], indexBytes(uint32(len(seed))))
	copy(in[8:], seed)

	state := make([]byte, aes.BlockSize)
	for i := 0; i < len(in); i += aes.BlockSize {
		for j := range state {
			state[j] ^= in[i+j]
		}
		a.mac.Encrypt(state, state)
	}
	return state
}

func (a AESCTRDerivation) Derive(dst []byte, index uint32, seed []byte) {
	block, err := aes.NewCipher(a.key(index, seed))
	if err != nil {
		panic(err)
	}

	for i := range dst {
		dst[i] = 0
	}
	var iv [aes.BlockSize]byte
	cipher.NewCTR(block, iv[:]).XORKeyStream(dst, dst)
}
