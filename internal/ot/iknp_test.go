package ot

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/optable/otlib/internal/crypto"
)

const otExtensionCount = 1000

func newIKNP(t *testing.T, kdf crypto.KeyDerivation, k int) *IKNP {
	t.Helper()
	ext, err := NewIKNP(NewNaorPinkas(testParams(t).Group(), kdf), kdf, k, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return ext
}

// iknpParty returns a constructor of extension engines over kdf and k.
func iknpParty(kdf crypto.KeyDerivation, k int) func(*testing.T) *IKNP {
	return func(t *testing.T) *IKNP { return newIKNP(t, kdf, k) }
}

// runIKNP runs one batch between two parties, each with its own engine.
func runIKNP(t *testing.T, newParty func(*testing.T) *IKNP, b Batch, secrets [][][]byte, choices []int) [][]byte {
	t.Helper()
	sender, receiver := newParty(t), newParty(t)
	msg, sendErr, recvErr := run(t,
		func(ctx context.Context, conn Conn) error { return sender.Send(ctx, b, secrets, conn) },
		func(ctx context.Context, conn Conn) ([][]byte, error) { return receiver.Receive(ctx, b, choices, conn) },
	)
	if sendErr != nil {
		t.Fatalf("Send encountered error: %v", sendErr)
	}
	if recvErr != nil {
		t.Fatalf("Receive encountered error: %v", recvErr)
	}
	return msg
}

func TestIKNP(t *testing.T) {
	secrets := genSecrets(t, otExtensionCount, 2, 64)
	choices := genChoices(t, otExtensionCount, 2)
	b := Batch{Instances: otExtensionCount, N: 2, MaxLen: 64}

	start := time.Now()
	msg := runIKNP(t, iknpParty(crypto.NewBlake3Chain(), DefaultSecurityParameter), b, secrets, choices)
	t.Logf("Time taken for %d IKNP OTs is: %v", otExtensionCount, time.Since(start))

	if len(msg) != otExtensionCount {
		t.Fatalf("got %d messages", len(msg))
	}
	for j, c := range choices {
		if !bytes.Equal(msg[j], secrets[j][c]) {
			t.Fatalf("OT extension failed at instance %d: got %x, want %x", j, msg[j], secrets[j][c])
		}
	}
}

func TestIKNPUnalignedInstances(t *testing.T) {
	for _, kdf := range []crypto.KeyDerivation{crypto.NewSHA3Chain(), crypto.NewAESCTR()} {
		t.Run(kdf.Name(), func(t *testing.T) {
			secrets := genSecrets(t, 13, 2, 5)
			choices := genChoices(t, 13, 2)
			msg := runIKNP(t, iknpParty(kdf, 128), Batch{Instances: 13, N: 2, MaxLen: 5}, secrets, choices)
			for j, c := range choices {
				if !bytes.Equal(msg[j], secrets[j][c]) {
					t.Fatalf("instance %d: got %x, want %x", j, msg[j], secrets[j][c])
				}
			}
		})
	}
}

func TestIKNPExample(t *testing.T) {
	msg := runIKNP(t, iknpParty(crypto.NewBlake3Chain(), DefaultSecurityParameter), Batch{Instances: 1, N: 2, MaxLen: 4},
		[][][]byte{{[]byte("AAAA"), []byte("BBBB")}}, []int{1})
	if string(msg[0]) != "BBBB" {
		t.Fatalf("got %q, want BBBB", msg[0])
	}
}

func TestNewIKNPSecurityParameter(t *testing.T) {
	base := newNaorPinkas(t)
	for _, k := range []int{0, -8, 81} {
		if _, err := NewIKNP(base, crypto.NewBlake3Chain(), k, rand.Reader); !errors.Is(err, ErrSecurityParameter) {
			t.Errorf("k=%d: expected ErrSecurityParameter, got %v", k, err)
		}
	}
}

func TestIKNPRejectsBeforeIO(t *testing.T) {
	ext := newIKNP(t, crypto.NewBlake3Chain(), DefaultSecurityParameter)
	ctx := context.Background()

	b := Batch{Instances: 2, N: 3, MaxLen: 4}
	if err := ext.Send(ctx, b, genSecrets(t, 2, 3, 4), silentConn{t}); err != ErrNotBinary {
		t.Errorf("expected ErrNotBinary, got %v", err)
	}
	if _, err := ext.Receive(ctx, b, []int{0, 1}, silentConn{t}); err != ErrNotBinary {
		t.Errorf("expected ErrNotBinary, got %v", err)
	}

	b.N = 2
	long := [][][]byte{{[]byte("AAAA"), []byte("BBBB")}, {[]byte("CCCCC"), {}}}
	if err := ext.Send(ctx, b, long, silentConn{t}); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("expected ErrMessageTooLong, got %v", err)
	}
}
