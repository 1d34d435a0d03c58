package ot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/optable/otlib/internal/crypto"
	"github.com/optable/otlib/internal/group"
)

// runNaorPinkas runs one batch between two parties, each with its own
// engine built by newParty.
func runNaorPinkas(t *testing.T, newParty func(*testing.T) *NaorPinkas, b Batch, secrets [][][]byte, choices []int) [][]byte {
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

func TestNaorPinkas(t *testing.T) {
	for _, name := range []string{group.ModP1024, group.Ristretto255} {
		for _, n := range []int{2, 4, 8} {
			t.Run(fmt.Sprintf("%s/N=%d", name, n), func(t *testing.T) {
				newParty := func(t *testing.T) *NaorPinkas {
					rng, err := group.NewEntropyRand()
					if err != nil {
						t.Fatal(err)
					}
					grp, err := group.New(name, testParams(t), rng)
					if err != nil {
						t.Fatal(err)
					}
					return NewNaorPinkas(grp, crypto.NewBlake3Chain())
				}
				// every choice appears at least once
				m := 3 * n
				choices := make([]int, m)
				for j := range choices {
					choices[j] = j % n
				}
				secrets := genSecrets(t, m, n, 32)
				b := Batch{Instances: m, N: n, MaxLen: 32}

				start := time.Now()
				msg := runNaorPinkas(t, newParty, b, secrets, choices)
				t.Logf("Time taken for %d NaorPinkas OTs is: %v", m, time.Since(start))

				if len(msg) != m {
					t.Fatalf("got %d messages, want %d", len(msg), m)
				}
				for j, c := range choices {
					if !bytes.Equal(msg[j], secrets[j][c]) {
						t.Fatalf("OT failed at instance %d: got %x, want %x", j, msg[j], secrets[j][c])
					}
				}
			})
		}
	}
}

func TestNaorPinkasRepeatedTrials(t *testing.T) {
	secrets := genSecrets(t, 1, 4, 16)
	b := Batch{Instances: 1, N: 4, MaxLen: 16}
	for trial := 0; trial < 3; trial++ {
		for c := 0; c < 4; c++ {
			msg := runNaorPinkas(t, newNaorPinkas, b, secrets, []int{c})
			if !bytes.Equal(msg[0], secrets[0][c]) {
				t.Fatalf("trial %d choice %d: got %x", trial, c, msg[0])
			}
		}
	}
}

func TestNaorPinkasExamples(t *testing.T) {
	msg := runNaorPinkas(t, newNaorPinkas, Batch{Instances: 1, N: 2, MaxLen: 4},
		[][][]byte{{[]byte("AAAA"), []byte("BBBB")}}, []int{1})
	if string(msg[0]) != "BBBB" {
		t.Fatalf("got %q, want BBBB", msg[0])
	}

	msg = runNaorPinkas(t, newNaorPinkas, Batch{Instances: 1, N: 4, MaxLen: 1},
		[][][]byte{{[]byte("A"), []byte("B"), []byte("C"), []byte("D")}}, []int{2})
	if string(msg[0]) != "C" {
		t.Fatalf("got %q, want C", msg[0])
	}
}

func TestNaorPinkasShortSecretsArePadded(t *testing.T) {
	msg := runNaorPinkas(t, newNaorPinkas, Batch{Instances: 2, N: 2, MaxLen: 6},
		[][][]byte{{[]byte("AAAA"), []byte("BB")}, {[]byte("CCCCCC"), {}}}, []int{1, 1})
	if !bytes.Equal(msg[0], []byte("BB\x00\x00\x00\x00")) {
		t.Fatalf("got %q", msg[0])
	}
	if !bytes.Equal(msg[1], make([]byte, 6)) {
		t.Fatalf("got %q", msg[1])
	}
}

func TestNaorPinkasLengthBoundary(t *testing.T) {
	ot := newNaorPinkas(t)
	b := Batch{Instances: 1, N: 2, MaxLen: 4}

	// exactly MaxLen is accepted
	msg := runNaorPinkas(t, newNaorPinkas, b, [][][]byte{{[]byte("AAAA"), []byte("BBBB")}}, []int{0})
	if string(msg[0]) != "AAAA" {
		t.Fatalf("got %q", msg[0])
	}

	// MaxLen+1 is rejected before any traffic
	err := ot.Send(context.Background(), b, [][][]byte{{[]byte("AAAA"), []byte("BBBBB")}}, silentConn{t})
	if !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestNaorPinkasValidatesBeforeIO(t *testing.T) {
	ot := newNaorPinkas(t)
	ctx := context.Background()
	b := Batch{Instances: 2, N: 2, MaxLen: 4}

	if err := ot.Send(ctx, b, genSecrets(t, 2, 3, 4), silentConn{t}); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("expected ErrArityMismatch, got %v", err)
	}
	if err := ot.Send(ctx, b, genSecrets(t, 3, 2, 4), silentConn{t}); !errors.Is(err, ErrInstanceCount) {
		t.Errorf("expected ErrInstanceCount, got %v", err)
	}
	if _, err := ot.Receive(ctx, b, []int{0, 2}, silentConn{t}); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestNaorPinkasTransportError(t *testing.T) {
	ot := newNaorPinkas(t)
	b := Batch{Instances: 4, N: 2, MaxLen: 8}
	_, sendErr, recvErr := run(t,
		func(ctx context.Context, conn Conn) error { return ot.Send(ctx, b, genSecrets(t, 4, 2, 8), conn) },
		func(ctx context.Context, conn Conn) ([][]byte, error) {
			// hang up after reading the first element
			_, err := conn.RecvExact(128)
			return nil, err
		},
	)
	if recvErr != nil {
		t.Fatal(recvErr)
	}
	if sendErr == nil {
		t.Fatal("expected the sender to fail once the receiver hung up")
	}
}
