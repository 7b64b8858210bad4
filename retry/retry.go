// Package retry runs an operation under a bounded retry policy. It is the
// loop around backoff.Strategy used by every state backend call.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/backoff"
)

// Policy describes when and how long to retry.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int

	// Backoff computes the wait before each retry.
	Backoff backoff.Strategy

	// Retryable classifies errors. Nil means nothing is retried.
	Retryable func(error) bool

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultAttempts is the attempt budget of the state store.
const DefaultAttempts = 5

// Default returns the state store policy: five attempts with
// backoff.DefaultStrategy.
func Default(retryable func(error) bool) Policy {
	return Policy{
		Attempts:  DefaultAttempts,
		Backoff:   backoff.DefaultStrategy(),
		Retryable: retryable,
	}
}

// Do calls fn until it succeeds, fails with a non-retryable error, the
// attempt budget is spent or ctx is done. A spent budget returns an error
// matching both onyesha.ErrRetriesExhausted and the last error from fn.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, joinCtx(err, lastErr)
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.Delay(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, joinCtx(err, lastErr)
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", onyesha.ErrRetriesExhausted, attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func joinCtx(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, lastErr)
}
