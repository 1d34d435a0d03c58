package ot

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

/*
Oblivious transfer engines. Every engine runs one batch of independent
OT instances over a Conn, with fixed-width messages and no framing.
*/

var (
	ErrEmptyBatch        = errors.New("attempt to perform OT on an empty batch")
	ErrInstanceCount     = errors.New("number of inputs does not match the number of OT instances")
	ErrArityMismatch     = errors.New("number of secrets does not match the OT arity")
	ErrMessageTooLong    = errors.New("secret is longer than the maximum message length")
	ErrInvalidChoice     = errors.New("choice is out of range")
	ErrNotBinary         = errors.New("protocol requires exactly 2 secrets per instance")
	ErrSecurityParameter = errors.New("security parameter must be a positive multiple of 8")
)

// Conn is the exact-length transport a protocol runs over.
type Conn interface {
	SendExact(b []byte) error
	RecvExact(n int) ([]byte, error)
	Flush() error
}

// Batch describes one protocol run: Instances independent OTs, each over
// N secrets of at most MaxLen bytes.
type Batch struct {
	Instances int
	N         int
	MaxLen    int
}

func (b Batch) validate() error {
	if b.Instances <= 0 {
		return ErrEmptyBatch
	}
	if b.N < 2 {
		return fmt.Errorf("%w: N=%d", ErrArityMismatch, b.N)
	}
	if b.MaxLen <= 0 {
		return fmt.Errorf("%w: maximum length %d", ErrMessageTooLong, b.MaxLen)
	}
	return nil
}

// CheckSecrets validates the sender input of a run.
func (b Batch) CheckSecrets(secrets [][][]byte) error {
	if err := b.validate(); err != nil {
		return err
	}
	if len(secrets) != b.Instances {
		return fmt.Errorf("%w: got %d, want %d", ErrInstanceCount, len(secrets), b.Instances)
	}
	for j, instance := range secrets {
		if len(instance) != b.N {
			return fmt.Errorf("%w: instance %d has %d secrets, want %d", ErrArityMismatch, j, len(instance), b.N)
		}
		for i, s := range instance {
			if len(s) > b.MaxLen {
				return fmt.Errorf("%w: instance %d secret %d has %d bytes, maximum is %d", ErrMessageTooLong, j, i, len(s), b.MaxLen)
			}
		}
	}
	return nil
}

// CheckChoices validates the receiver input of a run.
func (b Batch) CheckChoices(choices []int) error {
	if err := b.validate(); err != nil {
		return err
	}
	if len(choices) != b.Instances {
		return fmt.Errorf("%w: got %d, want %d", ErrInstanceCount, len(choices), b.Instances)
	}
	for j, c := range choices {
		if c < 0 || c >= b.N {
			return fmt.Errorf("%w: instance %d chose %d, N=%d", ErrInvalidChoice, j, c, b.N)
		}
	}
	return nil
}

// pad returns s right padded with zeros to MaxLen bytes.
func (b Batch) pad(s []byte) []byte {
	p := make([]byte, b.MaxLen)
	copy(p, s)
	return p
}

// stage logs the end of a protocol stage with its duration.
func stage(logger logr.Logger, n int, start time.Time) time.Time {
	now := time.Now()
	logger.V(1).Info(fmt.Sprintf("Finished stage %d", n), "time", now.Sub(start).String())
	return now
}
