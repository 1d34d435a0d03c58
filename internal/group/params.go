package group

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"
)

// 1024-bit IFC domain parameters: q is a 160-bit prime dividing p-1
// and g generates the subgroup of order q.
const (
	ifcP1024 = "B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B616073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BFACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371"
	ifcG1024 = "A4D1CBD5C3FD34126765A442EFB99905F8104DD258AC507FD6406CFF14266D31266FEA1E5C41564B777E690F5504F213160217B4B01B886A5E91547F9E2749F4D7FBD7D3B9A92EE1909D0D2263F80A76A6A24C087A091F531DBF0A0169B6A28AD662A4D18E73AFA32D779D5918D08BC8858F4DCEF97C2A24855E6EEB22B3B2E5"
	ifcQ1024 = "F518AA8781A8DF278ABA4E7D64B7CB9D49462353"
)

var (
	ErrFieldSize     = errors.New("encoded element does not have the field size")
	ErrDecode        = errors.New("invalid group element encoding")
	ErrParams        = errors.New("invalid group parameters")
	ErrNotInvertible = errors.New("element is not invertible")
)

// Params holds the domain parameters of a multiplicative group modulo a
// prime p together with the random source used for every sample drawn
// from it. Params must not be shared between concurrent sessions.
type Params struct {
	p, q      *safenum.Modulus
	g         *safenum.Nat
	cofactor  *safenum.Nat // (p-1)/q
	pBig      *big.Int
	qBig      *big.Int
	fieldSize int
	rand      io.Reader
}

// NewParams returns the fixed 1024-bit group drawing randomness from rand.
func NewParams(rand io.Reader) *Params {
	params, err := NewParamsFromHex(ifcP1024, ifcG1024, ifcQ1024, rand)
	if err != nil {
		// hardcoded parameters are valid
		panic(err)
	}
	return params
}

// DefaultParams returns the fixed 1024-bit group with a freshly seeded Rand.
func DefaultParams() (*Params, error) {
	r, err := NewEntropyRand()
	if err != nil {
		return nil, err
	}
	return NewParams(r), nil
}

// NewParamsFromHex builds Params from hex encoded p, g and q. It checks
// that q divides p-1 and that g has order q.
func NewParamsFromHex(p, g, q string, rand io.Reader) (*Params, error) {
	pb, err := hex.DecodeString(p)
	if err != nil {
		return nil, fmt.Errorf("%w: p: %v", ErrParams, err)
	}
	gb, err := hex.DecodeString(g)
	if err != nil {
		return nil, fmt.Errorf("%w: g: %v", ErrParams, err)
	}
	qb, err := hex.DecodeString(q)
	if err != nil {
		return nil, fmt.Errorf("%w: q: %v", ErrParams, err)
	}

	pBig := new(big.Int).SetBytes(pb)
	qBig := new(big.Int).SetBytes(qb)
	pMinusOne := new(big.Int).Sub(pBig, big.NewInt(1))
	cofactor, rem := new(big.Int).QuoRem(pMinusOne, qBig, new(big.Int))
	if qBig.Sign() == 0 || rem.Sign() != 0 {
		return nil, fmt.Errorf("%w: q does not divide p-1", ErrParams)
	}

	params := &Params{
		p:         safenum.ModulusFromBytes(pb),
		q:         safenum.ModulusFromBytes(qb),
		pBig:      pBig,
		qBig:      qBig,
		fieldSize: len(pBig.Bytes()),
		rand:      rand,
	}
	params.g = new(safenum.Nat).SetBig(new(big.Int).SetBytes(gb), params.p.BitLen())
	params.cofactor = new(safenum.Nat).SetBig(cofactor, cofactor.BitLen())

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that 1 < g < p and g^q = 1 mod p.
func (p *Params) Validate() error {
	gBig := p.g.Big()
	if gBig.Cmp(big.NewInt(1)) <= 0 || gBig.Cmp(p.pBig) >= 0 {
		return fmt.Errorf("%w: generator out of range", ErrParams)
	}
	if !p.isOne(p.Exp(p.g, p.q.Nat())) {
		return fmt.Errorf("%w: g^q != 1 mod p", ErrParams)
	}
	return nil
}

// FieldSize is the width in bytes of an encoded element.
func (p *Params) FieldSize() int { return p.fieldSize }

// P returns a copy of the modulus.
func (p *Params) P() *big.Int { return new(big.Int).Set(p.pBig) }

// Q returns a copy of the subgroup order.
func (p *Params) Q() *big.Int { return new(big.Int).Set(p.qBig) }

func (p *Params) isOne(x *safenum.Nat) bool {
	return x.Big().Cmp(big.NewInt(1)) == 0
}

// WithRand returns a copy of p that samples from r instead.
func (p *Params) WithRand(r io.Reader) *Params {
	c := *p
	c.rand = r
	return &c
}
