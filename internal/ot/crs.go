package ot

import (
	"github.com/cronokirby/safenum"
	"github.com/optable/otlib/internal/group"
)

// crsSeed fixes the randomness of the CRS setup so that both parties
// derive the same reference string without talking to each other.
var crsSeed = make([]byte, 8)

// CRS is a dual-mode common reference string in extractable mode: two
// independent branches (g0, h0 = g0^x0) and (g1, h1 = g1^x1), x0 != x1.
type CRS struct {
	G0, H0 *safenum.Nat
	G1, H1 *safenum.Nat
}

// SetupCRS derives the extractable CRS for params from the fixed seed.
// The random source of params is left untouched.
func SetupCRS(params *group.Params) (*CRS, error) {
	p := params.WithRand(group.NewRand(crsSeed))

	g0, err := p.FindGenerator()
	if err != nil {
		return nil, err
	}
	g1, err := p.FindGenerator()
	if err != nil {
		return nil, err
	}

	var x0, x1 *safenum.Nat
	for {
		if x0, err = p.SampleExponent(); err != nil {
			return nil, err
		}
		if x1, err = p.SampleExponent(); err != nil {
			return nil, err
		}
		if x0.Big().Cmp(x1.Big()) != 0 {
			break
		}
	}

	return &CRS{G0: g0, H0: p.Exp(g0, x0), G1: g1, H1: p.Exp(g1, x1)}, nil
}

// branch returns the generator pair of branch b.
func (c *CRS) branch(b int) (g, h *safenum.Nat) {
	gs := [2]*safenum.Nat{c.G0, c.G1}
	hs := [2]*safenum.Nat{c.H0, c.H1}
	return gs[b], hs[b]
}
