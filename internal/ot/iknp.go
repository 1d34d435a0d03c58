package ot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/optable/otlib/internal/crypto"
	"github.com/optable/otlib/internal/util"
)

/*
1 out of 2 IKNP OT extension
from the paper: Extending Oblivious Transfers Efficiently
by Yuval Ishai, Joe Kilian, Kobbi Nissim, and Erez Petrank in 2003.
reference: https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf

The extension receiver is the sender of k base OTs over the columns of
its random matrix T, the extension sender receives them with the bits of
its random correlation string s as choices.
*/

// DefaultSecurityParameter is the number of base OTs, in bits.
const DefaultSecurityParameter = 80

type IKNP struct {
	base *NaorPinkas
	kdf  crypto.KeyDerivation
	k    int
	rand io.Reader
}

// NewIKNP returns an extension over k base OTs run by base. rand samples
// the correlation string and the matrix T.
func NewIKNP(base *NaorPinkas, kdf crypto.KeyDerivation, k int, rand io.Reader) (*IKNP, error) {
	if k <= 0 || k%8 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrSecurityParameter, k)
	}
	return &IKNP{base: base, kdf: kdf, k: k, rand: rand}, nil
}

// baseBatch is the bootstrap: k instances of 1 out of 2 over bit columns
// of rows bits.
func (ext *IKNP) baseBatch(rows int) Batch {
	return Batch{Instances: ext.k, N: 2, MaxLen: rows / 8}
}

func rowsFor(b Batch) int {
	return b.Instances + util.PadTill8(b.Instances)
}

// Send runs the extension sender. b.N must be 2.
func (ext *IKNP) Send(ctx context.Context, b Batch, secrets [][][]byte, conn Conn) error {
	if b.N != 2 {
		return ErrNotBinary
	}
	if err := b.CheckSecrets(secrets); err != nil {
		return err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "iknp", "role", "sender")
	start := time.Now()
	rows := rowsFor(b)

	// stage 1: receive q^i = t^i xor s_i*r through the base OTs
	logger.V(1).Info("Starting stage 1", "instances", b.Instances, "k", ext.k)
	s, err := util.SampleBytes(ext.rand, ext.k/8)
	if err != nil {
		return err
	}
	sBits := util.UnpackBits(s, ext.k)
	choices := make([]int, ext.k)
	for i, bit := range sBits {
		choices[i] = int(bit)
	}
	columns, err := ext.base.Receive(ctx, ext.baseBatch(rows), choices, conn)
	if err != nil {
		return err
	}
	q, err := util.Pack(columns, rows, ext.k)
	if err != nil {
		return err
	}
	// row j of q is t_j xor r_j*s
	q = q.Transpose()
	timer := stage(logger, 1, start)

	// stage 2: row j keys secret 0, row j xor s keys secret 1
	logger.V(1).Info("Starting stage 2")
	for j, pair := range secrets {
		key0 := q.Column(j)
		key1, err := util.XorBytes(key0, s)
		if err != nil {
			return err
		}
		if err := conn.SendExact(crypto.Mask(ext.kdf, uint32(j), key0, b.pad(pair[0]))); err != nil {
			return err
		}
		if err := conn.SendExact(crypto.Mask(ext.kdf, uint32(j), key1, b.pad(pair[1]))); err != nil {
			return err
		}
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	stage(logger, 2, timer)
	return nil
}

// Receive runs the extension receiver with one choice bit per instance.
func (ext *IKNP) Receive(ctx context.Context, b Batch, choices []int, conn Conn) ([][]byte, error) {
	if b.N != 2 {
		return nil, ErrNotBinary
	}
	if err := b.CheckChoices(choices); err != nil {
		return nil, err
	}
	logger := logr.FromContextOrDiscard(ctx).WithValues("protocol", "iknp", "role", "receiver")
	start := time.Now()
	rows := rowsFor(b)

	// stage 1: send the column pairs (t^i, t^i xor r) through the base OTs
	logger.V(1).Info("Starting stage 1", "instances", b.Instances, "k", ext.k)
	bits := make([]uint8, len(choices))
	for j, c := range choices {
		bits[j] = uint8(c)
	}
	r := util.PackBits(bits, rows/8)

	t, err := util.SampleBitMatrix(ext.rand, rows, ext.k)
	if err != nil {
		return nil, err
	}
	tr, err := t.XorColumns(r)
	if err != nil {
		return nil, err
	}
	pairs := make([][][]byte, ext.k)
	for i := range pairs {
		pairs[i] = [][]byte{t.Column(i), tr.Column(i)}
	}
	if err := ext.base.Send(ctx, ext.baseBatch(rows), pairs, conn); err != nil {
		return nil, err
	}
	t = t.Transpose()
	timer := stage(logger, 1, start)

	// stage 2: row j of T unlocks the chosen secret of instance j
	logger.V(1).Info("Starting stage 2")
	results := make([][]byte, b.Instances)
	for j, choice := range choices {
		var masked [2][]byte
		for i := range masked {
			if masked[i], err = conn.RecvExact(b.MaxLen); err != nil {
				return nil, err
			}
		}
		results[j] = crypto.Mask(ext.kdf, uint32(j), t.Column(j), masked[choice])
	}
	stage(logger, 2, timer)
	return results, nil
}
