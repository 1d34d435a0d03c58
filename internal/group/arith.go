package group

import (
	"github.com/cronokirby/safenum"
)

// Exp returns x^e mod p. x must be reduced modulo p.
func (p *Params) Exp(x, e *safenum.Nat) *safenum.Nat {
	return new(safenum.Nat).Exp(x, e, p.p)
}

// BaseExp returns g^e mod p.
func (p *Params) BaseExp(e *safenum.Nat) *safenum.Nat {
	return p.Exp(p.g, e)
}

// Mul returns x*y mod p.
func (p *Params) Mul(x, y *safenum.Nat) *safenum.Nat {
	return new(safenum.Nat).ModMul(x, y, p.p)
}

// Inverse returns x^-1 mod p. Every non-zero residue is invertible
// since p is prime.
func (p *Params) Inverse(x *safenum.Nat) (*safenum.Nat, error) {
	if x.Big().Sign() == 0 {
		return nil, ErrNotInvertible
	}
	return new(safenum.Nat).ModInverse(x, p.p), nil
}

// ElementBytes encodes x as FieldSize big endian bytes.
func (p *Params) ElementBytes(x *safenum.Nat) []byte {
	return x.FillBytes(make([]byte, p.fieldSize))
}

// SetElementBytes decodes FieldSize big endian bytes into an element,
// rejecting 0 and any value not below p.
func (p *Params) SetElementBytes(b []byte) (*safenum.Nat, error) {
	if len(b) != p.fieldSize {
		return nil, ErrFieldSize
	}
	x := new(safenum.Nat).SetBytes(b)
	if _, _, lt := x.CmpMod(p.p); lt != 1 {
		return nil, ErrDecode
	}
	if x.Big().Sign() == 0 {
		return nil, ErrDecode
	}
	return x, nil
}
