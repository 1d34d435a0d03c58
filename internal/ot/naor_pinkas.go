package ot

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/go-logr/logr"
	"github.com/optable/otlib/internal/crypto"
	"github.com/optable/otlib/internal/group"
)

/*
1 out of N base OT
from the paper: Efficient Oblivious Transfer Protocols
by Moni Naor and Benny Pinkas in 2001.
reference: https://dl.acm.org/doi/abs/10.5555/365411.365502

Wire order: sender g^r, C_1..C_{N-1}; receiver pk_0 for every instance;
sender N masked secrets of MaxLen bytes for every instance.
*/

type NaorPinkas struct {
	grp group.Group
	kdf crypto.KeyDerivation
}

func NewNaorPinkas(grp group.Group, kdf crypto.KeyDerivation) *NaorPinkas {
	return &NaorPinkas{grp: grp, kdf: kdf}
}

// Send runs the sender side of a batch. secrets[j][i] is secret i of
// instance j; secrets shorter than b.MaxLen are zero padded.
func (n *NaorPinkas) Send(ctx context.Context, b Batch, secrets [][][]byte, conn Conn) error {
	if err := b.CheckSecrets(secrets); err != nil {
		return err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "naor-pinkas", "role", "sender")
	start := time.Now()

	writer := newWriter(conn)
	reader := newReader(conn, n.grp)

	// stage 1: commit to r and the C_i
	logger.V(1).Info("Starting stage 1", "instances", b.Instances, "N", b.N)
	r, err := n.grp.RandomScalar()
	if err != nil {
		return err
	}
	if err := writer.write(n.grp.BaseExp(r)); err != nil {
		return err
	}

	// cr[i] = C_i^r, cr[0] is unused
	cr := make([]group.Element, b.N)
	for i := 1; i < b.N; i++ {
		c, err := n.grp.RandomElement()
		if err != nil {
			return err
		}
		if err := writer.write(c); err != nil {
			return err
		}
		cr[i] = n.grp.Exp(c, r)
	}
	timer := stage(logger, 1, start)

	// stage 2: receive pk_0 for every instance
	logger.V(1).Info("Starting stage 2")
	pk0 := make([]group.Element, b.Instances)
	for j := range pk0 {
		if pk0[j], err = reader.read(); err != nil {
			return err
		}
	}
	timer = stage(logger, 2, timer)

	// stage 3: pk_0^r unlocks secret 0, (pk_0^r)^-1 * C_i^r unlocks secret i
	logger.V(1).Info("Starting stage 3")
	for j, instance := range secrets {
		pk0r := n.grp.Exp(pk0[j], r)
		inv := n.grp.Inverse(pk0r)
		for i, secret := range instance {
			key := pk0r
			if i > 0 {
				key = n.grp.Mul(inv, cr[i])
			}
			if err := conn.SendExact(crypto.Mask(n.kdf, uint32(i), key.Bytes(), b.pad(secret))); err != nil {
				return err
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	stage(logger, 3, timer)
	return nil
}

// Receive runs the receiver side of a batch and returns, for every
// instance j, the MaxLen byte secret number choices[j].
func (n *NaorPinkas) Receive(ctx context.Context, b Batch, choices []int, conn Conn) ([][]byte, error) {
	if err := b.CheckChoices(choices); err != nil {
		return nil, err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "naor-pinkas", "role", "receiver")
	start := time.Now()

	writer := newWriter(conn)
	reader := newReader(conn, n.grp)

	// stage 1: receive g^r and C_1..C_{N-1}
	logger.V(1).Info("Starting stage 1", "instances", b.Instances, "N", b.N)
	gr, err := reader.read()
	if err != nil {
		return nil, err
	}
	// c[0] only fills the slot indexed by a zero choice, its product is discarded
	c := make([]group.Element, b.N)
	c[0] = gr
	for i := 1; i < b.N; i++ {
		if c[i], err = reader.read(); err != nil {
			return nil, err
		}
	}
	timer := stage(logger, 1, start)

	// stage 2: pk_0 = g^k when choosing 0, (g^k)^-1 * C_c otherwise.
	// Both candidates are always computed.
	logger.V(1).Info("Starting stage 2")
	ks := make([]group.Scalar, b.Instances)
	for j, choice := range choices {
		if ks[j], err = n.grp.RandomScalar(); err != nil {
			return nil, err
		}
		pks := n.grp.BaseExp(ks[j])
		candidates := [2]group.Element{pks, n.grp.Mul(n.grp.Inverse(pks), c[choice])}
		nonZero := subtle.ConstantTimeEq(int32(choice), 0) ^ 1
		if err := writer.write(candidates[nonZero]); err != nil {
			return nil, err
		}
	}
	timer = stage(logger, 2, timer)

	// stage 3: (g^r)^k unlocks the chosen secret
	logger.V(1).Info("Starting stage 3")
	results := make([][]byte, b.Instances)
	plaintexts := make([][]byte, b.N)
	for j, choice := range choices {
		key := n.grp.Exp(gr, ks[j]).Bytes()
		for i := range plaintexts {
			masked, err := conn.RecvExact(b.MaxLen)
			if err != nil {
				return nil, err
			}
			plaintexts[i] = crypto.Mask(n.kdf, uint32(i), key, masked)
		}
		results[j] = plaintexts[choice]
	}
	stage(logger, 3, timer)
	return results, nil
}
