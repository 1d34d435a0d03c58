package ot

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/optable/otlib/internal/group"
)

func newPVW(t *testing.T) *PVW {
	t.Helper()
	d, err := NewPVW(testParams(t))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// runPVW runs one batch between two parties, each with its own group
// parameters and CRS.
func runPVW(t *testing.T, b Batch, secrets [][][]byte, choices []int) [][]byte {
	t.Helper()
	sender, receiver := newPVW(t), newPVW(t)
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

func TestPVW(t *testing.T) {
	const m = 16
	choices := make([]int, m)
	for j := range choices {
		choices[j] = j % 2
	}
	secrets := genSecrets(t, m, 2, 32)

	start := time.Now()
	msg := runPVW(t, Batch{Instances: m, N: 2, MaxLen: 32}, secrets, choices)
	t.Logf("Time taken for %d PVW OTs is: %v", m, time.Since(start))

	for j, c := range choices {
		if !bytes.Equal(msg[j], secrets[j][c]) {
			t.Fatalf("instance %d: got %x, want %x", j, msg[j], secrets[j][c])
		}
	}
}

func TestPVWExample(t *testing.T) {
	msg := runPVW(t, Batch{Instances: 1, N: 2, MaxLen: 4},
		[][][]byte{{[]byte("AAAA"), []byte("BBBB")}}, []int{1})
	if string(msg[0]) != "BBBB" {
		t.Fatalf("got %q, want BBBB", msg[0])
	}
}

func TestPVWOtherBranchIsUnreadable(t *testing.T) {
	d := newPVW(t)
	msgs := [2][]byte{[]byte("left secret"), []byte("right secret")}

	for choice := 0; choice < 2; choice++ {
		x, pk, err := d.keygen(choice)
		if err != nil {
			t.Fatal(err)
		}
		for branch, m := range msgs {
			c, err := d.encrypt(branch, pk, m)
			if err != nil {
				t.Fatal(err)
			}
			got, err := d.decrypt(x, c, len(m))
			if branch == choice {
				if err != nil || !bytes.Equal(got, m) {
					t.Fatalf("choice %d: got %q, %v", choice, got, err)
				}
				continue
			}
			if err == nil && bytes.Equal(got, m) {
				t.Fatalf("choice %d recovered the secret of branch %d", choice, branch)
			}
		}
	}
}

func TestPVWRejectsBeforeIO(t *testing.T) {
	d := newPVW(t)
	ctx := context.Background()

	b := Batch{Instances: 1, N: 3, MaxLen: 4}
	if err := d.Send(ctx, b, genSecrets(t, 1, 3, 4), silentConn{t}); err != ErrNotBinary {
		t.Errorf("expected ErrNotBinary, got %v", err)
	}
	if _, err := d.Receive(ctx, b, []int{2}, silentConn{t}); err != ErrNotBinary {
		t.Errorf("expected ErrNotBinary, got %v", err)
	}

	// a marked 128 byte message no longer fits below p/2
	b = Batch{Instances: 1, N: 2, MaxLen: 128}
	if err := d.Send(ctx, b, genSecrets(t, 1, 2, 128), silentConn{t}); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("expected ErrMessageTooLong, got %v", err)
	}
	if _, err := d.Receive(ctx, b, []int{0}, silentConn{t}); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestPVWLongestMessage(t *testing.T) {
	secrets := genSecrets(t, 2, 2, 127)
	msg := runPVW(t, Batch{Instances: 2, N: 2, MaxLen: 127}, secrets, []int{1, 0})
	if !bytes.Equal(msg[0], secrets[0][1]) || !bytes.Equal(msg[1], secrets[1][0]) {
		t.Fatal("OT of 127 byte secrets failed")
	}
}

func TestSetupCRS(t *testing.T) {
	seed := []byte("session seed")
	params := group.NewParams(group.NewRand(seed))

	a, err := SetupCRS(params)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SetupCRS(testParams(t))
	if err != nil {
		t.Fatal(err)
	}

	// both parties derive the same CRS regardless of their own randomness
	if a.G0.Big().Cmp(b.G0.Big()) != 0 || a.H0.Big().Cmp(b.H0.Big()) != 0 ||
		a.G1.Big().Cmp(b.G1.Big()) != 0 || a.H1.Big().Cmp(b.H1.Big()) != 0 {
		t.Fatal("CRS setup is not deterministic")
	}
	if a.G0.Big().Cmp(a.G1.Big()) == 0 {
		t.Fatal("both branches share a generator")
	}

	// the session random source was not consumed by the setup
	x, err := params.SampleExponent()
	if err != nil {
		t.Fatal(err)
	}
	y, err := group.NewParams(group.NewRand(seed)).SampleExponent()
	if err != nil {
		t.Fatal(err)
	}
	if x.Big().Cmp(y.Big()) != 0 {
		t.Fatal("CRS setup consumed the session random source")
	}
}
