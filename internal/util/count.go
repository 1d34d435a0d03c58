package util

import (
	"bufio"
	"io"
)

// Count counts the number of non-empty lines in r.
func Count(r io.Reader) (int64, error) {
	var n int64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if len(scanner.Bytes()) != 0 {
			n++
		}
	}
	return n, scanner.Err()
}
