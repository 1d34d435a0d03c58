package util

import (
	"context"
)

// Sel runs f and waits for it to return or for ctx to be done,
// whichever happens first. f is not started when ctx is already done.
// When ctx wins, f keeps running in the background and its result is dropped.
func Sel(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := make(chan error, 1)
	go func() {
		d <- f()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-d:
		return err
	}
}
