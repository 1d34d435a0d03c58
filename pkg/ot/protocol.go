package ot

import (
	"context"
	"fmt"
	"strings"
)

const (
	NaorPinkas = iota
	IKNP
	PVW
)

// Protocol is the oblivious transfer protocol enumeration
type Protocol int

var (
	ProtocolNaorPinkas Protocol = NaorPinkas
	ProtocolIKNP       Protocol = IKNP
	ProtocolPVW        Protocol = PVW
)

// Sender is the sender side of an OT batch: secrets[j][i] is secret i
// of instance j, every secret at most maxLen bytes.
type Sender interface {
	Send(ctx context.Context, secrets [][][]byte, maxLen int) error
}

// Receiver is the receiver side of an OT batch: choices[j] picks one of
// the n secrets of instance j. Every result is exactly maxLen bytes.
type Receiver interface {
	Receive(ctx context.Context, choices []int, n, maxLen int) ([][]byte, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, secrets [][][]byte, maxLen int) error

func (f SenderFunc) Send(ctx context.Context, secrets [][][]byte, maxLen int) error {
	return f(ctx, secrets, maxLen)
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx context.Context, choices []int, n, maxLen int) ([][]byte, error)

func (f ReceiverFunc) Receive(ctx context.Context, choices []int, n, maxLen int) ([][]byte, error) {
	return f(ctx, choices, n, maxLen)
}

// NewSender returns the sender side of protocol running over s.
func NewSender(protocol Protocol, s *Session) (Sender, error) {
	switch protocol {
	case ProtocolNaorPinkas:
		return SenderFunc(s.BaseSend), nil
	case ProtocolIKNP:
		return SenderFunc(s.ExtensionSend), nil
	case ProtocolPVW:
		return SenderFunc(s.DualModeSend), nil
	default:
		return nil, fmt.Errorf("OT sender protocol %d not supported", protocol)
	}
}

// NewReceiver returns the receiver side of protocol running over s.
// IKNP and PVW only accept n == 2.
func NewReceiver(protocol Protocol, s *Session) (Receiver, error) {
	switch protocol {
	case ProtocolNaorPinkas:
		return ReceiverFunc(s.BaseReceive), nil
	case ProtocolIKNP:
		return ReceiverFunc(s.extensionReceiveN), nil
	case ProtocolPVW:
		return ReceiverFunc(s.dualModeReceiveN), nil
	default:
		return nil, fmt.Errorf("OT receiver protocol %d not supported", protocol)
	}
}

func (p Protocol) String() string {
	switch p {
	case ProtocolNaorPinkas:
		return "np"
	case ProtocolIKNP:
		return "iknp"
	case ProtocolPVW:
		return "pvw"
	default:
		return "undefined"
	}
}

// ParseProtocol is the inverse of Protocol.String.
func ParseProtocol(name string) (Protocol, error) {
	switch strings.ToLower(name) {
	case "np", "naorpinkas", "naor-pinkas":
		return ProtocolNaorPinkas, nil
	case "iknp":
		return ProtocolIKNP, nil
	case "pvw":
		return ProtocolPVW, nil
	default:
		return 0, fmt.Errorf("unsupported protocol %q", name)
	}
}
