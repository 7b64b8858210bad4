package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/backoff"
	"github.com/PADAS/gundi-integration-onyesha/retry"
)

var errFlaky = errors.New("flaky")

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

func fastPolicy() retry.Policy {
	return retry.Policy{
		Attempts:  5,
		Backoff:   backoff.NewConstant(time.Millisecond),
		Retryable: isFlaky,
	}
}

// failing returns fn that fails n times with err and then succeeds.
func failing(n int, err error, calls *int) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		if *calls <= n {
			return err
		}
		return nil
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	if err := retry.Do(context.Background(), fastPolicy(), failing(0, errFlaky, &calls)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RecoversBelowBudget(t *testing.T) {
	for failures := 1; failures < 5; failures++ {
		calls := 0
		if err := retry.Do(context.Background(), fastPolicy(), failing(failures, errFlaky, &calls)); err != nil {
			t.Fatalf("failures=%d: unexpected error: %v", failures, err)
		}
		if calls != failures+1 {
			t.Errorf("failures=%d: calls = %d, want %d", failures, calls, failures+1)
		}
	}
}

func TestDo_ExhaustsAtBudget(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastPolicy(), failing(5, errFlaky, &calls))
	if !errors.Is(err, onyesha.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, errFlaky) {
		t.Errorf("expected underlying error to be preserved, got %v", err)
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
}

func TestDo_NonRetryablePropagatesImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := retry.Do(context.Background(), fastPolicy(), failing(3, permanent, &calls))
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if errors.Is(err, onyesha.ErrRetriesExhausted) {
		t.Error("non-retryable error must not be reported as exhausted")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_WaitsAreCapped(t *testing.T) {
	p := retry.Policy{
		Attempts:  5,
		Backoff:   backoff.NewExponentialJitter(time.Millisecond, 4*time.Millisecond, 2*time.Millisecond),
		Retryable: isFlaky,
	}
	var delays []time.Duration
	p.OnRetry = func(_ int, d time.Duration, _ error) { delays = append(delays, d) }

	calls := 0
	start := time.Now()
	_ = retry.Do(context.Background(), p, failing(10, errFlaky, &calls))
	elapsed := time.Since(start)

	if len(delays) != 4 {
		t.Fatalf("waits = %d, want 4 (one fewer than attempts)", len(delays))
	}
	var total time.Duration
	for i, d := range delays {
		if d > 4*time.Millisecond {
			t.Errorf("wait %d = %v exceeds cap", i+1, d)
		}
		total += d
	}
	if total > 16*time.Millisecond {
		t.Errorf("total wait %v exceeds sum of caps", total)
	}
	if elapsed < total {
		t.Errorf("elapsed %v shorter than scheduled waits %v", elapsed, total)
	}
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	p := retry.Policy{
		Attempts:  5,
		Backoff:   backoff.NewConstant(time.Hour),
		Retryable: isFlaky,
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.OnRetry = func(int, time.Duration, error) { cancel() }

	calls := 0
	err := retry.Do(ctx, p, failing(10, errFlaky, &calls))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, errFlaky) {
		t.Errorf("expected last error to be attached, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoValue_ReturnsValue(t *testing.T) {
	calls := 0
	v, err := retry.DoValue(context.Background(), fastPolicy(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" {
		t.Errorf("value = %q, want ok", v)
	}
}

func TestDefault_UsesFiveAttempts(t *testing.T) {
	p := retry.Default(isFlaky)
	if p.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", p.Attempts)
	}
	if p.Backoff == nil {
		t.Error("Backoff is nil")
	}
}
