package ot

import (
	"context"
	"fmt"
	"time"

	"github.com/cronokirby/safenum"
	"github.com/go-logr/logr"
	"github.com/optable/otlib/internal/group"
	"github.com/pkg/errors"
)

/*
1 out of 2 OT from the DDH dual-mode cryptosystem
from the paper: A Framework for Efficient and Composable Oblivious Transfer
by Chris Peikert, Vinod Vaikuntanathan and Brent Waters in 2008.
reference: https://eprint.iacr.org/2007/348

Per instance the receiver sends a public key (2 elements), then the
sender answers with one ciphertext (u, v) per branch (4 elements).
*/

// PVW runs dual-mode OT in extractable mode over a 1024-bit group.
type PVW struct {
	params *group.Params
	crs    *CRS
}

// NewPVW sets up the CRS for params.
func NewPVW(params *group.Params) (*PVW, error) {
	crs, err := SetupCRS(params)
	if err != nil {
		return nil, err
	}
	return &PVW{params: params, crs: crs}, nil
}

// publicKey is (g_sigma^x, h_sigma^x) for the receiver's choice sigma.
type publicKey struct {
	g, h *safenum.Nat
}

type ciphertext struct {
	u, v *safenum.Nat
}

func (d *PVW) checkMaxLen(b Batch) error {
	if b.MaxLen > d.params.MaxMessageLen() {
		return fmt.Errorf("%w: maximum length %d exceeds %d", ErrMessageTooLong, b.MaxLen, d.params.MaxMessageLen())
	}
	return nil
}

// keygen returns a fresh secret exponent and the public key bound to branch sigma.
func (d *PVW) keygen(sigma int) (*safenum.Nat, publicKey, error) {
	x, err := d.params.SampleExponent()
	if err != nil {
		return nil, publicKey{}, err
	}
	g, h := d.crs.branch(sigma)
	return x, publicKey{g: d.params.Exp(g, x), h: d.params.Exp(h, x)}, nil
}

// encrypt encrypts msg on branch b: u = g_b^s h_b^t, v = pk.g^s pk.h^t * encode(msg).
func (d *PVW) encrypt(b int, pk publicKey, msg []byte) (ciphertext, error) {
	m, err := d.params.Encode(msg)
	if err != nil {
		return ciphertext{}, err
	}
	s, err := d.params.SampleExponent()
	if err != nil {
		return ciphertext{}, err
	}
	t, err := d.params.SampleExponent()
	if err != nil {
		return ciphertext{}, err
	}

	g, h := d.crs.branch(b)
	p := d.params
	u := p.Mul(p.Exp(g, s), p.Exp(h, t))
	v := p.Mul(p.Mul(p.Exp(pk.g, s), p.Exp(pk.h, t)), m)
	return ciphertext{u: u, v: v}, nil
}

// decrypt recovers a length byte message as decode(v * (u^x)^-1). It only
// succeeds on the branch x was generated for.
func (d *PVW) decrypt(x *safenum.Nat, c ciphertext, length int) ([]byte, error) {
	ux, err := d.params.Inverse(d.params.Exp(c.u, x))
	if err != nil {
		return nil, err
	}
	return d.params.Decode(d.params.Mul(c.v, ux), length)
}

func (d *PVW) sendPair(conn Conn, a, b *safenum.Nat) error {
	if err := conn.SendExact(d.params.ElementBytes(a)); err != nil {
		return err
	}
	return conn.SendExact(d.params.ElementBytes(b))
}

func (d *PVW) recvPair(conn Conn) (a, b *safenum.Nat, err error) {
	n := d.params.FieldSize()
	buf, err := conn.RecvExact(2 * n)
	if err != nil {
		return nil, nil, err
	}
	if a, err = d.params.SetElementBytes(buf[:n]); err != nil {
		return nil, nil, errors.Wrap(err, "peer sent an invalid element")
	}
	if b, err = d.params.SetElementBytes(buf[n:]); err != nil {
		return nil, nil, errors.Wrap(err, "peer sent an invalid element")
	}
	return a, b, nil
}

// Send runs the sender side of a batch. b.N must be 2.
func (d *PVW) Send(ctx context.Context, b Batch, secrets [][][]byte, conn Conn) error {
	if b.N != 2 {
		return ErrNotBinary
	}
	if err := b.CheckSecrets(secrets); err != nil {
		return err
	}
	if err := d.checkMaxLen(b); err != nil {
		return err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "pvw", "role", "sender")
	start := time.Now()

	logger.V(1).Info("Starting stage 1", "instances", b.Instances)
	for _, pair := range secrets {
		g, h, err := d.recvPair(conn)
		if err != nil {
			return err
		}
		pk := publicKey{g: g, h: h}
		for branch, secret := range pair {
			c, err := d.encrypt(branch, pk, b.pad(secret))
			if err != nil {
				return err
			}
			if err := d.sendPair(conn, c.u, c.v); err != nil {
				return err
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	stage(logger, 1, start)
	return nil
}

// Receive runs the receiver side of a batch with one choice bit per instance.
func (d *PVW) Receive(ctx context.Context, b Batch, choices []int, conn Conn) ([][]byte, error) {
	if b.N != 2 {
		return nil, ErrNotBinary
	}
	if err := b.CheckChoices(choices); err != nil {
		return nil, err
	}
	if err := d.checkMaxLen(b); err != nil {
		return nil, err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "pvw", "role", "receiver")
	start := time.Now()

	logger.V(1).Info("Starting stage 1", "instances", b.Instances)
	results := make([][]byte, b.Instances)
	for j, choice := range choices {
		x, pk, err := d.keygen(choice)
		if err != nil {
			return nil, err
		}
		if err := d.sendPair(conn, pk.g, pk.h); err != nil {
			return nil, err
		}

		var cts [2]ciphertext
		for i := range cts {
			if cts[i].u, cts[i].v, err = d.recvPair(conn); err != nil {
				return nil, err
			}
		}
		if results[j], err = d.decrypt(x, cts[choice], b.MaxLen); err != nil {
			return nil, errors.Wrapf(err, "instance %d", j)
		}
	}
	stage(logger, 1, start)
	return results, nil
}
