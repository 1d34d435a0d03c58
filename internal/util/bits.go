package util

import (
	"errors"
	"io"
)

var ErrByteLengthMissMatch = errors.New("provided bytes do not have the same length for XOR operations")

// XorBytes xors each byte from a with b and returns dst
// if a and b are the same length
func XorBytes(a, b []byte) (dst []byte, err error) {
	if len(a) != len(b) {
		return nil, ErrByteLengthMissMatch
	}

	dst = make([]byte, len(a))
	copy(dst, a)
	Xor(dst, b)
	return dst, nil
}

// BitSet reports whether bit i of b is set. Bits are numbered
// from the most significant bit of b[0].
func BitSet(b []byte, i int) bool {
	return b[i/8]&(0x80>>(i%8)) != 0
}

// SetBit sets or clears bit i of b, numbered as in BitSet.
func SetBit(b []byte, i int, v bool) {
	if v {
		b[i/8] |= 0x80 >> (i % 8)
	} else {
		b[i/8] &^= 0x80 >> (i % 8)
	}
}

// PackBits packs one bit per element of bits (any non-zero value counts
// as 1) into a slice of size bytes, most significant bit first.
// size must be at least ceil(len(bits)/8).
func PackBits(bits []uint8, size int) []byte {
	packed := make([]byte, size)
	for i, b := range bits {
		if b != 0 {
			SetBit(packed, i, true)
		}
	}
	return packed
}

// UnpackBits is the inverse of PackBits for the first n bits of b.
func UnpackBits(b []byte, n int) []uint8 {
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = (b[i/8] >> (7 - i%8)) & 1
	}
	return bits
}

// PadTill8 returns the number of bits needed to pad n up to the next multiple of 8.
func PadTill8(n int) int {
	return (8 - n%8) % 8
}

// SampleBytes fills a fresh slice of n bytes from r.
func SampleBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
