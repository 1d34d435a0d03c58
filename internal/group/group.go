package group

import (
	"fmt"

	"github.com/cronokirby/safenum"
)

// Names of the available groups.
const (
	ModP1024     = "modp1024"
	Ristretto255 = "ristretto255"
)

// Element is a member of a Group.
type Element interface {
	// Bytes returns the fixed width wire encoding of the element.
	Bytes() []byte
}

// Scalar is an exponent of a Group.
type Scalar interface {
	Bytes() []byte
}

// Group is a prime order group in which the decisional Diffie-Hellman
// problem is hard, written multiplicatively. Elements and scalars of one
// Group must not be passed to another.
type Group interface {
	Name() string
	// ElementLen is the width in bytes of an encoded element.
	ElementLen() int
	RandomScalar() (Scalar, error)
	RandomElement() (Element, error)
	BaseExp(k Scalar) Element
	Exp(a Element, k Scalar) Element
	Mul(a, b Element) Element
	Inverse(a Element) Element
	Decode(b []byte) (Element, error)
}

// New returns the named group. ModP1024 uses params, Ristretto255 draws
// its randomness from r.
func New(name string, params *Params, r *Rand) (Group, error) {
	switch name {
	case ModP1024, "":
		return params.Group(), nil
	case Ristretto255:
		return NewRistretto(r), nil
	default:
		return nil, fmt.Errorf("unknown group %q", name)
	}
}

// Group returns p as a Group.
func (p *Params) Group() Group {
	return modP{p}
}

type natElement struct {
	n    *safenum.Nat
	size int
}

func (e natElement) Bytes() []byte {
	return e.n.FillBytes(make([]byte, e.size))
}

type natScalar struct {
	n *safenum.Nat
}

func (s natScalar) Bytes() []byte {
	return s.n.Bytes()
}

type modP struct {
	p *Params
}

func (g modP) Name() string    { return ModP1024 }
func (g modP) ElementLen() int { return g.p.fieldSize }

func (g modP) element(n *safenum.Nat) Element {
	return natElement{n: n, size: g.p.fieldSize}
}

func (g modP) RandomScalar() (Scalar, error) {
	k, err := g.p.SampleExponent()
	if err != nil {
		return nil, err
	}
	return natScalar{k}, nil
}

func (g modP) RandomElement() (Element, error) {
	x, err := g.p.SampleElement()
	if err != nil {
		return nil, err
	}
	return g.element(x), nil
}

func (g modP) BaseExp(k Scalar) Element {
	return g.element(g.p.BaseExp(k.(natScalar).n))
}

func (g modP) Exp(a Element, k Scalar) Element {
	return g.element(g.p.Exp(a.(natElement).n, k.(natScalar).n))
}

func (g modP) Mul(a, b Element) Element {
	return g.element(g.p.Mul(a.(natElement).n, b.(natElement).n))
}

// Inverse panics on zero, which Decode and the sampling functions never produce.
func (g modP) Inverse(a Element) Element {
	inv, err := g.p.Inverse(a.(natElement).n)
	if err != nil {
		panic(err)
	}
	return g.element(inv)
}

func (g modP) Decode(b []byte) (Element, error) {
	x, err := g.p.SetElementBytes(b)
	if err != nil {
		return nil, err
	}
	return g.element(x), nil
}
