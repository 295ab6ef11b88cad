// Package timeout provides the single timeout-race primitive shared by
// profile resolution and the controller safety ceiling. The operation and the
// timer race; whichever settles first determines the outcome, and the loser's
// result is discarded.
package timeout

import (
	"context"
	"errors"
	"time"
)

// ErrTimedOut is returned when the deadline wins the race.
var ErrTimedOut = errors.New("operation timed out")

type result[T any] struct {
	value T
	err   error
}

// Run races op against d. The op receives a context that is cancelled once
// the deadline wins, so well-behaved operations can abort early. An op that
// completes after the deadline has its result dropped; it never reaches the
// caller.
func Run[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		v, err := op(opCtx)
		ch <- result[T]{value: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-opCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, ErrTimedOut
	}
}

// RunOr is Run with a fallback value substituted on timeout. Errors from the
// operation itself still propagate; only the deadline is absorbed.
func RunOr[T any](ctx context.Context, d time.Duration, fallback T, op func(context.Context) (T, error)) (T, error) {
	v, err := Run(ctx, d, op)
	if errors.Is(err, ErrTimedOut) {
		return fallback, nil
	}
	return v, err
}
