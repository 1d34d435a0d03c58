// Package channel provides the ordered, reliable byte stream that the
// oblivious transfer protocols run over. Messages on the wire have fixed
// lengths known to both ends, so there is no framing: a Channel only sends
// and receives exact byte counts.
package channel

import (
	"bufio"
	"context"
	"encoding/binary"
	"hash"
	"io"
	"net"
	"strconv"

	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

// public key of the transcript fingerprint; the fingerprint detects
// desynchronised runs, it does not authenticate anything.
var fingerprintKey = []byte("otlib transcript fingerprint key")

// Channel is a bidirectional exact-length byte stream. Writes are buffered
// and flushed before every blocking read, so a protocol step that sends
// and then waits for an answer never deadlocks. A Channel is not safe for
// concurrent use.
type Channel struct {
	rw     io.ReadWriter
	w      *bufio.Writer
	closer io.Closer

	sent, received int64
	transcript     hash.Hash64
}

// New wraps rw. If rw is an io.Closer, Close closes it.
func New(rw io.ReadWriter) *Channel {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// the key is 32 bytes
		panic(err)
	}
	c := &Channel{rw: rw, w: bufio.NewWriter(rw), transcript: h}
	if closer, ok := rw.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

// Connect dials host:port over TCP.
func Connect(ctx context.Context, host string, port int) (*Channel, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	return New(conn), nil
}

// ListenAccept listens on host:port, accepts exactly one connection and
// stops listening.
func ListenAccept(ctx context.Context, host string, port int) (*Channel, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrap(err, "listen")
	}
	return Accept(ctx, l)
}

// Accept accepts one connection from l and closes l. It gives up when
// ctx is done.
func Accept(ctx context.Context, l net.Listener) (*Channel, error) {
	defer l.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-stop:
		}
	}()

	conn, err := l.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "accept")
	}
	return New(conn), nil
}

// SendExact queues all of b for sending.
func (c *Channel) SendExact(b []byte) error {
	n, err := c.w.Write(b)
	c.sent += int64(n)
	c.transcript.Write(b[:n])
	if err != nil {
		return errors.Wrapf(err, "send %d bytes", len(b))
	}
	return nil
}

// RecvExact flushes pending writes and blocks until exactly n bytes
// have been received.
func (c *Channel) RecvExact(n int) ([]byte, error) {
	if err := c.Flush(); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	read, err := io.ReadFull(c.rw, b)
	c.received += int64(read)
	c.transcript.Write(b[:read])
	if err != nil {
		return nil, errors.Wrapf(err, "receive %d bytes", n)
	}
	return b, nil
}

// Flush writes any buffered data to the underlying stream.
func (c *Channel) Flush() error {
	if err := c.w.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// Close flushes and closes the underlying stream when it can be closed.
func (c *Channel) Close() error {
	err := c.Flush()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close")
		}
	}
	return err
}

// Abort closes the underlying stream without flushing, unblocking any
// pending RecvExact. Unlike the other methods it may be called while
// another goroutine uses the channel.
func (c *Channel) Abort() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Stats returns the number of bytes sent and received so far.
func (c *Channel) Stats() (sent, received int64) {
	return c.sent, c.received
}

// Fingerprint is a keyed HighwayHash of every byte sent and received so
// far, in order. Two ends of a healthy channel agree on it once all sent
// data has been received.
func (c *Channel) Fingerprint() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], c.transcript.Sum64())
	return b[:]
}
