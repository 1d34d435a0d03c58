package util

import (
	"bufio"
	"bytes"
	"io"
)

// SafeReadLine blocks until a whole line can be read or
// r returns an error. The trailing \n (and \r, if any) is stripped.
func SafeReadLine(r *bufio.Reader) (line []byte, err error) {
	line, err = r.ReadBytes('\n')
	line = bytes.TrimRight(line, "\r\n")
	return
}

// Exhaust delivers up to n non-empty lines of r on the first channel. Once the lines channel is closed, the second
// channel yields the read error, if any, and is closed in turn.
func Exhaust(n int64, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errs := make(chan error, 1)
	src := bufio.NewReader(r)

	go func() {
		defer close(errs)
		defer close(lines)
		for delivered := int64(0); delivered < n; {
			line, err := SafeReadLine(src)
			if len(line) != 0 {
				lines <- line
				delivered++
			}
			if err != nil {
				if err != io.EOF {
					errs <- err
				}
				return
			}
		}
	}()

	return lines, errs
}
