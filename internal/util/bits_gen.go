//go:build !amd64 || generic
// +build !amd64 generic

package util

import (
	"encoding/binary"
)

// Xor xors a into dst in place. Panics if a and dst do not have the same length.
func Xor(dst, a []byte) {
	if len(dst) != len(a) {
		panic(ErrByteLengthMissMatch)
	}

	n := len(dst) / 8
	for i := 0; i < n; i++ {
		d := binary.LittleEndian.Uint64(dst[i*8:])
		binary.LittleEndian.PutUint64(dst[i*8:], d^binary.LittleEndian.Uint64(a[i*8:]))
	}

	for j := n * 8; j < len(dst); j++ {
		dst[j] ^= a[j]
	}
}
