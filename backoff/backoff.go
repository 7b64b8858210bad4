// Package backoff provides retry delay strategies for state backend calls.
// All strategies are safe for concurrent use (they are stateless).
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant always returns the same delay regardless of attempt number.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant backoff strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay each attempt.
// Delay = min(Initial * 2^(attempt-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// ──────────────────────────────────────────────────
// ExponentialJitter (additive jitter)
// ──────────────────────────────────────────────────

// ExponentialJitter adds a uniform random amount in [0, Jitter) to an
// exponential base and caps the sum at Max.
// Delay = min(Initial * 2^(attempt-1) + U[0, Jitter), Max).
// The wait never drops below the exponential base.
type ExponentialJitter struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  time.Duration
}

// NewExponentialJitter creates an exponential backoff with additive jitter.
func NewExponentialJitter(initial, maxDelay, jitter time.Duration) *ExponentialJitter {
	return &ExponentialJitter{Initial: initial, Max: maxDelay, Jitter: jitter}
}

// Delay returns the jittered exponential delay for attempt.
func (e *ExponentialJitter) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Jitter > 0 {
		d += rand.Float64() * float64(e.Jitter) //nolint:gosec // jitter intentionally uses non-crypto rand
	}
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// DefaultStrategy returns the backoff used by the state store:
// ExponentialJitter with 1s initial, 30s max and 3s jitter.
func DefaultStrategy() Strategy {
	return NewExponentialJitter(1*time.Second, 30*time.Second, 3*time.Second)
}
