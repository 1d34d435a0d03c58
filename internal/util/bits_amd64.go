//go:build amd64 && !generic
// +build amd64,!generic

package util

import (
	"github.com/alecthomas/unsafeslice"
)

// Xor xors a into dst in place, eight bytes at a time over the
// part of the slices that casts to uint64, and bytewise over the tail.
// Panics if a and dst do not have the same length.
func Xor(dst, a []byte) {
	if len(dst) != len(a) {
		panic(ErrByteLengthMissMatch)
	}
	if len(dst) == 0 {
		return
	}

	castDst := unsafeslice.Uint64SliceFromByteSlice(dst)
	castA := unsafeslice.Uint64SliceFromByteSlice(a)
	for i := range castDst {
		castDst[i] ^= castA[i]
	}

	for j := len(castDst) * 8; j < len(dst); j++ {
		dst[j] ^= a[j]
	}
}
