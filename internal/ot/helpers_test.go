package ot

import (
	"context"
	"crypto/rand"
	"net"
	"testing"

	"github.com/optable/otlib/internal/crypto"
	"github.com/optable/otlib/internal/group"
	"github.com/optable/otlib/pkg/channel"
	"golang.org/x/sync/errgroup"
)

type sendFunc func(ctx context.Context, conn Conn) error
type recvFunc func(ctx context.Context, conn Conn) ([][]byte, error)

// run executes both parties over an in-memory pipe. A party that fails
// closes its end so that the other one is never left blocked.
func run(t *testing.T, send sendFunc, recv recvFunc) ([][]byte, error, error) {
	t.Helper()
	senderConn, receiverConn := net.Pipe()
	ctx := context.Background()

	var g errgroup.Group
	var result [][]byte
	var sendErr, recvErr error
	g.Go(func() error {
		c := channel.New(senderConn)
		defer c.Close()
		sendErr = send(ctx, c)
		return nil
	})
	g.Go(func() error {
		c := channel.New(receiverConn)
		defer c.Close()
		result, recvErr = recv(ctx, c)
		return nil
	})
	g.Wait()
	return result, sendErr, recvErr
}

func genSecrets(t *testing.T, m, n, l int) [][][]byte {
	t.Helper()
	secrets := make([][][]byte, m)
	for j := range secrets {
		secrets[j] = make([][]byte, n)
		for i := range secrets[j] {
			secrets[j][i] = make([]byte, l)
			if _, err := rand.Read(secrets[j][i]); err != nil {
				t.Fatal(err)
			}
		}
	}
	return secrets
}

func genChoices(t *testing.T, m, n int) []int {
	t.Helper()
	b := make([]byte, m)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	choices := make([]int, m)
	for j := range choices {
		choices[j] = int(b[j]) % n
	}
	return choices
}

func testParams(t *testing.T) *group.Params {
	t.Helper()
	params, err := group.DefaultParams()
	if err != nil {
		t.Fatal(err)
	}
	return params
}

func newNaorPinkas(t *testing.T) *NaorPinkas {
	return NewNaorPinkas(testParams(t).Group(), crypto.NewBlake3Chain())
}

// silentConn fails the test on any traffic.
type silentConn struct {
	t *testing.T
}

func (c silentConn) SendExact(b []byte) error {
	c.t.Fatalf("unexpected send of %d bytes", len(b))
	return nil
}

func (c silentConn) RecvExact(n int) ([]byte, error) {
	c.t.Fatalf("unexpected receive of %d bytes", n)
	return nil, nil
}

func (c silentConn) Flush() error { return nil }
