package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

const (
	// Info shows run summaries only.
	Info = iota
	// Stages adds the start and end of every protocol stage.
	Stages
	// Trace adds per step byte counts.
	Trace
)

// GetLogger returns a stdr backed logr.Logger named "otlib" and sets the
// global stdr verbosity to v, one of Info, Stages or Trace. Out of range
// values fall back to Info.
func GetLogger(v int) logr.Logger {
	logger := stdr.New(nil).WithName("otlib")
	if v > Trace || v < Info {
		logger.Info("Invalid verbosity, showing info level messages only", "verbosity", v)
		v = Info
	}
	stdr.SetVerbosity(v)

	return logger
}

// ContextWithLogger returns a copy of ctx carrying logger, which the OT
// engines pick up for their stage logs.
func ContextWithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// GetLoggerFromContextWithName returns the logger carried by ctx, or
// fallback when ctx has none, with name appended when it is not empty.
func GetLoggerFromContextWithName(ctx context.Context, fallback logr.Logger, name string) logr.Logger {
	logger, err := logr.FromContext(ctx)
	if err != nil {
		logger = fallback
	}

	if name != "" {
		return logger.WithName(name)
	}
	return logger
}
