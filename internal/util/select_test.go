package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errSel = errors.New("this is an error")

func TestSel(t *testing.T) {
	// normal operation
	f1 := func() error {
		return errSel
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := Sel(ctx, f1); err != errSel {
		t.Errorf("expected %v, got %v", errSel, err)
	}

	// canceled before the call, f must not run
	cancel()
	ran := false
	if err := Sel(ctx, func() error { ran = true; return nil }); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if ran {
		t.Error("f ran on a canceled context")
	}

	// deadline exceeded while f is still running
	release := make(chan struct{})
	defer close(release)
	f2 := func() error {
		<-release
		return nil
	}
	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := Sel(ctx, f2); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
