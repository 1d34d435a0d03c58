package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/optable/otlib/pkg/ot"
	"github.com/stretchr/testify/require"
)

func TestReadSecrets(t *testing.T) {
	in := "AAAA,BBBB\n\nA,B,C,D\r\n"
	secrets, err := readSecrets(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, [][][]byte{
		{[]byte("AAAA"), []byte("BBBB")},
		{[]byte("A"), []byte("B"), []byte("C"), []byte("D")},
	}, secrets)
	require.Equal(t, 4, longest(secrets))
}

func TestParseChoices(t *testing.T) {
	choices, err := parseChoices("1, 0,3,")
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 3}, choices)

	_, err = parseChoices("1,x")
	require.Error(t, err)
}

func TestReadChoices(t *testing.T) {
	choices, err := readChoices(strings.NewReader("1\n0\n\n2\n"))
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 2}, choices)

	_, err = readChoices(strings.NewReader("1\nno\n0\n"))
	require.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeResults(&out, [][]byte{[]byte("A\x00\x00"), []byte("BBB")}, false))
	require.Equal(t, "A\nBBB\n", out.String())
}

func TestWriteResultsHex(t *testing.T) {
	// a binary secret ending in zero bytes must come out at full width
	results := [][]byte{{0xff, 0x00, 0x00}, {0x00, 0x00, 0x00}, []byte("BBB")}
	var out bytes.Buffer
	require.NoError(t, writeResults(&out, results, true))
	require.Equal(t, "ff0000\n000000\n424242\n", out.String())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	for j, line := range lines {
		got, err := hex.DecodeString(line)
		require.NoError(t, err)
		require.Equal(t, results[j], got)
	}
}

func TestSample(t *testing.T) {
	secrets, choices, err := sample(rand.Reader, 10, 4, 3)
	require.NoError(t, err)
	require.Len(t, secrets, 10)
	require.Len(t, choices, 10)
	for j := range secrets {
		require.Len(t, secrets[j], 4)
		require.Len(t, secrets[j][0], 3)
		require.True(t, choices[j] >= 0 && choices[j] < 4)
	}
}

func TestBenchmark(t *testing.T) {
	ctx := context.Background()
	for _, p := range []ot.Protocol{ot.ProtocolNaorPinkas, ot.ProtocolIKNP} {
		res, err := benchmark(ctx, logr.Discard(), p, 24, 2, 8)
		require.NoError(t, err)
		require.Equal(t, 24, res.instances)
		require.NotZero(t, res.sent)
		require.NotZero(t, res.received)
	}
}
