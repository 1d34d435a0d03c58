package group

import (
	"io"

	"github.com/gtank/ristretto255"
)

const (
	ristrettoElementLen = 32
	uniformLen          = 64
)

type r255Element struct {
	e *ristretto255.Element
}

func (e r255Element) Bytes() []byte {
	return e.e.Encode(make([]byte, 0, ristrettoElementLen))
}

type r255Scalar struct {
	s *ristretto255.Scalar
}

func (s r255Scalar) Bytes() []byte {
	return s.s.Encode(nil)
}

type ristretto struct {
	rand io.Reader
}

// NewRistretto returns the ristretto255 prime order group, sampling from r.
func NewRistretto(r io.Reader) Group {
	return ristretto{rand: r}
}

func (ristretto) Name() string    { return Ristretto255 }
func (ristretto) ElementLen() int { return ristrettoElementLen }

func (g ristretto) uniform() ([]byte, error) {
	b := make([]byte, uniformLen)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (g ristretto) RandomScalar() (Scalar, error) {
	b, err := g.uniform()
	if err != nil {
		return nil, err
	}
	return r255Scalar{ristretto255.NewScalar().FromUniformBytes(b)}, nil
}

func (g ristretto) RandomElement() (Element, error) {
	b, err := g.uniform()
	if err != nil {
		return nil, err
	}
	return r255Element{ristretto255.NewElement().FromUniformBytes(b)}, nil
}

func (ristretto) BaseExp(k Scalar) Element {
	return r255Element{ristretto255.NewElement().ScalarBaseMult(k.(r255Scalar).s)}
}

func (ristretto) Exp(a Element, k Scalar) Element {
	return r255Element{ristretto255.NewElement().ScalarMult(k.(r255Scalar).s, a.(r255Element).e)}
}

func (ristretto) Mul(a, b Element) Element {
	return r255Element{ristretto255.NewElement().Add(a.(r255Element).e, b.(r255Element).e)}
}

func (ristretto) Inverse(a Element) Element {
	return r255Element{ristretto255.NewElement().Negate(a.(r255Element).e)}
}

func (ristretto) Decode(b []byte) (Element, error) {
	if len(b) != ristrettoElementLen {
		return nil, ErrFieldSize
	}
	e := ristretto255.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, ErrDecode
	}
	return r255Element{e}, nil
}
