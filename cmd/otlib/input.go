package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/optable/otlib/internal/util"
)

// readSecrets reads one OT instance per non-empty line of r, its secrets
// separated by commas.
func readSecrets(r io.ReadSeeker) ([][][]byte, error) {
	n, err := util.Count(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	secrets := make([][][]byte, 0, n)
	lines, errs := util.Exhaust(n, r)
	for line := range lines {
		secrets = append(secrets, bytes.Split(line, []byte(",")))
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return secrets, nil
}

// readSecretsFile is readSecrets over the file at path.
func readSecretsFile(path string) ([][][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSecrets(f)
}

// longest returns the length of the longest secret.
func longest(secrets [][][]byte) int {
	var max int
	for _, instance := range secrets {
		for _, secret := range instance {
			if len(secret) > max {
				max = len(secret)
			}
		}
	}
	return max
}

// parseChoices parses a comma separated list of choices.
func parseChoices(s string) ([]int, error) {
	var choices []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		c, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid choice %q: %w", field, err)
		}
		choices = append(choices, c)
	}
	return choices, nil
}

// readChoices reads one choice per non-empty line of r.
func readChoices(r io.Reader) ([]int, error) {
	var choices []int
	lines, errs := util.Exhaust(int64(^uint64(0)>>1), r)
	for line := range lines {
		c, err := parseChoices(string(line))
		if err != nil {
			// drain so the reading goroutine exits
			for range lines {
			}
			return nil, err
		}
		choices = append(choices, c...)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return choices, nil
}

// writeResults writes one result per line. Secrets are read as text, so
// by default the zero padding up to the maximum length is trimmed; with
// asHex every result is written hex encoded at its full width, padding
// included, which keeps binary secrets ending in zero bytes intact.
func writeResults(w io.Writer, results [][]byte, asHex bool) error {
	for _, r := range results {
		var err error
		if asHex {
			_, err = fmt.Fprintln(w, hex.EncodeToString(r))
		} else {
			_, err = fmt.Fprintf(w, "%s\n", bytes.TrimRight(r, "\x00"))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
