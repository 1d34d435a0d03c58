// Package ot runs oblivious transfer between two parties connected by a
// channel.Channel. A Session owns the group parameters and the random
// source of one party; the peer must build its Session with the same
// key derivation, group and security parameter.
package ot

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/optable/otlib/internal/crypto"
	"github.com/optable/otlib/internal/group"
	iot "github.com/optable/otlib/internal/ot"
	"github.com/optable/otlib/internal/util"
	"github.com/optable/otlib/pkg/channel"
	"github.com/optable/otlib/pkg/log"
)

// ErrSessionFailed is returned by every operation of a session whose
// earlier run aborted: the peer is in an unknown state and a new session
// is needed.
var ErrSessionFailed = errors.New("session failed, start a new one")

type config struct {
	kdf    string
	group  string
	k      int
	logger logr.Logger
}

// Option configures a Session.
type Option func(*config)

// WithKeyDerivation selects the pad derivation by name: blake3 (default),
// blake2b, sha3 or aes.
func WithKeyDerivation(name string) Option {
	return func(c *config) { c.kdf = name }
}

// WithGroup selects the base OT group: modp1024 (default) or ristretto255.
func WithGroup(name string) Option {
	return func(c *config) { c.group = name }
}

// WithSecurityParameter sets the number of base OTs behind OT extension.
func WithSecurityParameter(k int) Option {
	return func(c *config) { c.k = k }
}

// WithLogger sets the logger used when a context carries none.
func WithLogger(logger logr.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Session is one party's side of a series of OT batches over a single
// channel. Batches run one at a time; a Session is not safe for
// concurrent use.
type Session struct {
	ch     *channel.Channel
	params *group.Params
	cfg    config

	base *iot.NaorPinkas
	ext  *iot.IKNP
	dual *iot.PVW

	failed error
}

// NewSession prepares a session over ch with a freshly seeded random source.
func NewSession(ch *channel.Channel, opts ...Option) (*Session, error) {
	r, err := group.NewEntropyRand()
	if err != nil {
		return nil, err
	}
	return newSession(ch, r, opts...)
}

// newSession prepares a session whose every sampling call draws from r.
func newSession(ch *channel.Channel, r *group.Rand, opts ...Option) (*Session, error) {
	cfg := config{k: iot.DefaultSecurityParameter, logger: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	kdf, err := crypto.New(cfg.kdf)
	if err != nil {
		return nil, err
	}
	params := group.NewParams(r)
	grp, err := group.New(cfg.group, params, r)
	if err != nil {
		return nil, err
	}

	base := iot.NewNaorPinkas(grp, kdf)
	ext, err := iot.NewIKNP(base, kdf, cfg.k, r)
	if err != nil {
		return nil, err
	}

	return &Session{ch: ch, params: params, cfg: cfg, base: base, ext: ext}, nil
}

// Channel returns the channel the session runs over.
func (s *Session) Channel() *channel.Channel {
	return s.ch
}

// BaseSend runs Naor-Pinkas 1 out of N as the sender, N being the number
// of secrets of each instance.
func (s *Session) BaseSend(ctx context.Context, secrets [][][]byte, maxLen int) error {
	b := iot.Batch{Instances: len(secrets), N: arity(secrets), MaxLen: maxLen}
	return s.run(ctx, "np", func(ctx context.Context) error {
		return s.base.Send(ctx, b, secrets, s.ch)
	})
}

// BaseReceive runs Naor-Pinkas 1 out of n as the receiver.
func (s *Session) BaseReceive(ctx context.Context, choices []int, n, maxLen int) (results [][]byte, err error) {
	b := iot.Batch{Instances: len(choices), N: n, MaxLen: maxLen}
	err = s.run(ctx, "np", func(ctx context.Context) (err error) {
		results, err = s.base.Receive(ctx, b, choices, s.ch)
		return err
	})
	return results, err
}

// ExtensionSend runs IKNP 1 out of 2 OT extension as the sender.
func (s *Session) ExtensionSend(ctx context.Context, secrets [][][]byte, maxLen int) error {
	b := iot.Batch{Instances: len(secrets), N: arity(secrets), MaxLen: maxLen}
	return s.run(ctx, "iknp", func(ctx context.Context) error {
		return s.ext.Send(ctx, b, secrets, s.ch)
	})
}

// ExtensionReceive runs IKNP 1 out of 2 OT extension as the receiver,
// with one choice bit per instance.
func (s *Session) ExtensionReceive(ctx context.Context, choices []int, maxLen int) ([][]byte, error) {
	return s.extensionReceiveN(ctx, choices, 2, maxLen)
}

func (s *Session) extensionReceiveN(ctx context.Context, choices []int, n, maxLen int) (results [][]byte, err error) {
	b := iot.Batch{Instances: len(choices), N: n, MaxLen: maxLen}
	err = s.run(ctx, "iknp", func(ctx context.Context) (err error) {
		results, err = s.ext.Receive(ctx, b, choices, s.ch)
		return err
	})
	return results, err
}

// DualModeSend runs PVW 1 out of 2 OT as the sender.
func (s *Session) DualModeSend(ctx context.Context, secrets [][][]byte, maxLen int) error {
	b := iot.Batch{Instances: len(secrets), N: arity(secrets), MaxLen: maxLen}
	return s.run(ctx, "pvw", func(ctx context.Context) error {
		dual, err := s.dualMode()
		if err != nil {
			return err
		}
		return dual.Send(ctx, b, secrets, s.ch)
	})
}

// DualModeReceive runs PVW 1 out of 2 OT as the receiver, with one
// choice bit per instance.
func (s *Session) DualModeReceive(ctx context.Context, choices []int, maxLen int) ([][]byte, error) {
	return s.dualModeReceiveN(ctx, choices, 2, maxLen)
}

func (s *Session) dualModeReceiveN(ctx context.Context, choices []int, n, maxLen int) (results [][]byte, err error) {
	b := iot.Batch{Instances: len(choices), N: n, MaxLen: maxLen}
	err = s.run(ctx, "pvw", func(ctx context.Context) error {
		dual, err := s.dualMode()
		if err != nil {
			return err
		}
		results, err = dual.Receive(ctx, b, choices, s.ch)
		return err
	})
	return results, err
}

// dualMode sets up the CRS on first use.
func (s *Session) dualMode() (*iot.PVW, error) {
	if s.dual == nil {
		dual, err := iot.NewPVW(s.params)
		if err != nil {
			return nil, err
		}
		s.dual = dual
	}
	return s.dual, nil
}

func arity(secrets [][][]byte) int {
	if len(secrets) == 0 {
		return 0
	}
	return len(secrets[0])
}

// invalidInput reports errors raised before anything was sent.
func invalidInput(err error) bool {
	for _, target := range []error{
		iot.ErrEmptyBatch, iot.ErrInstanceCount, iot.ErrArityMismatch,
		iot.ErrMessageTooLong, iot.ErrInvalidChoice, iot.ErrNotBinary,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// run executes one batch. Input errors leave the session usable; any
// other failure, cancellation included, closes the channel and fails the
// session for good.
func (s *Session) run(ctx context.Context, protocol string, f func(context.Context) error) error {
	if s.failed != nil {
		return fmt.Errorf("%w: %v", ErrSessionFailed, s.failed)
	}
	logger := log.GetLoggerFromContextWithName(ctx, s.cfg.logger, "session")
	ctx = log.ContextWithLogger(ctx, logger)
	logger = logger.WithValues("protocol", protocol)

	sent, received := s.ch.Stats()
	err := util.Sel(ctx, func() error { return f(ctx) })
	if err != nil {
		if invalidInput(err) {
			return err
		}
		s.failed = err
		s.ch.Abort()
		logger.Error(err, "OT batch aborted")
		return err
	}

	nowSent, nowReceived := s.ch.Stats()
	logger.V(1).Info("OT batch done",
		"sent", humanize.Bytes(uint64(nowSent-sent)),
		"received", humanize.Bytes(uint64(nowReceived-received)),
		"transcript", hex.EncodeToString(s.ch.Fingerprint()))
	return nil
}
