package group

import (
	"errors"
	"math/big"

	"github.com/cronokirby/safenum"
)

// marker is prepended to every encoded message so that leading zero
// bytes survive the round trip through an integer.
const marker = 0x01

var ErrMessageTooLong = errors.New("message too long to encode as a group element")

// MaxMessageLen is the longest message Encode accepts: the marked
// message must stay at or below (p-1)/2.
func (p *Params) MaxMessageLen() int {
	return (p.pBig.BitLen() - 3) / 8
}

// Encode maps msg to a quadratic residue modulo p. The integer
// 0x01||msg is negated when p = 3 mod 4 and it is a non-residue,
// otherwise (p = 1 mod 4, where -1 is itself a residue) it is squared.
func (p *Params) Encode(msg []byte) (*safenum.Nat, error) {
	if len(msg) > p.MaxMessageLen() {
		return nil, ErrMessageTooLong
	}
	m := new(big.Int).SetBytes(append([]byte{marker}, msg...))

	var y *big.Int
	if p.pBig.Bit(1) == 1 {
		y = m
		if big.Jacobi(m, p.pBig) != 1 {
			y = new(big.Int).Sub(p.pBig, m)
		}
	} else {
		y = new(big.Int).Exp(m, big.NewInt(2), p.pBig)
	}
	return new(safenum.Nat).SetBig(y, p.pBig.BitLen()), nil
}

// Decode inverts Encode for a message of exactly length bytes.
func (p *Params) Decode(x *safenum.Nat, length int) ([]byte, error) {
	y := x.Big()
	half := new(big.Int).Rsh(p.pBig, 1) // (p-1)/2

	m := y
	if p.pBig.Bit(1) == 0 {
		if m = new(big.Int).ModSqrt(y, p.pBig); m == nil {
			return nil, ErrDecode
		}
	}
	if m.Cmp(half) > 0 {
		m = new(big.Int).Sub(p.pBig, m)
	}

	b := m.Bytes()
	if len(b) != length+1 || b[0] != marker {
		return nil, ErrDecode
	}
	return b[1:], nil
}
