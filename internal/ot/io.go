package ot

import (
	"github.com/optable/otlib/internal/group"
	"github.com/pkg/errors"
)

// elementWriter sends group elements at their fixed width.
type elementWriter struct {
	conn Conn
}

func newWriter(conn Conn) elementWriter {
	return elementWriter{conn: conn}
}

func (w elementWriter) write(e group.Element) error {
	return w.conn.SendExact(e.Bytes())
}

// elementReader receives and decodes fixed width group elements.
type elementReader struct {
	conn Conn
	grp  group.Group
}

func newReader(conn Conn, grp group.Group) elementReader {
	return elementReader{conn: conn, grp: grp}
}

func (r elementReader) read() (group.Element, error) {
	b, err := r.conn.RecvExact(r.grp.ElementLen())
	if err != nil {
		return nil, err
	}
	e, err := r.grp.Decode(b)
	if err != nil {
		return nil, errors.Wrap(err, "peer sent an invalid element")
	}
	return e, nil
}
