package group

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"
)

// maxGeneratorAttempts bounds generator discovery. A random residue
// fails only with probability about 1/q, so exhausting the bound means
// the parameters or the random source are broken.
const maxGeneratorAttempts = 1024

// extra bytes drawn beyond the modulus width so that reduction bias is negligible
const samplingSlack = 16

var ErrGeneratorNotFound = errors.New("no generator found within the attempt limit")

// SampleExponent returns a uniform exponent in [0,q).
func (p *Params) SampleExponent() (*safenum.Nat, error) {
	buf := make([]byte, (p.q.BitLen()+7)/8+samplingSlack)
	if _, err := io.ReadFull(p.rand, buf); err != nil {
		return nil, err
	}
	return new(safenum.Nat).Mod(new(safenum.Nat).SetBytes(buf), p.q), nil
}

// SampleElement returns g^x for a fresh uniform exponent x.
func (p *Params) SampleElement() (*safenum.Nat, error) {
	x, err := p.SampleExponent()
	if err != nil {
		return nil, err
	}
	return p.BaseExp(x), nil
}

// sampleResidue returns a uniform value in [0,p).
func (p *Params) sampleResidue() (*safenum.Nat, error) {
	buf := make([]byte, p.fieldSize+samplingSlack)
	if _, err := io.ReadFull(p.rand, buf); err != nil {
		return nil, err
	}
	return new(safenum.Nat).Mod(new(safenum.Nat).SetBytes(buf), p.p), nil
}

// FindGenerator returns a fresh generator of the order q subgroup:
// random residues h are raised to the cofactor (p-1)/q until the result
// is not 1. Since q is prime, any such h^((p-1)/q) has order exactly q.
func (p *Params) FindGenerator() (*safenum.Nat, error) {
	one := big.NewInt(1)
	for i := 0; i < maxGeneratorAttempts; i++ {
		h, err := p.sampleResidue()
		if err != nil {
			return nil, err
		}
		if h.Big().Sign() == 0 {
			continue
		}
		g := p.Exp(h, p.cofactor)
		if g.Big().Cmp(one) != 0 {
			return g, nil
		}
	}
	return nil, ErrGeneratorNotFound
}
