package cron_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/cron"
	"github.com/PADAS/gundi-integration-onyesha/id"
	"github.com/PADAS/gundi-integration-onyesha/store/memory"
)

// stubEmitter records EmitScheduleFired calls.
type stubEmitter struct {
	mu    sync.Mutex
	calls []firedCall
}

type firedCall struct {
	EntryName string
	RunID     id.ID
}

func (e *stubEmitter) EmitScheduleFired(_ context.Context, entryName string, runID id.ID) {
	e.mu.Lock()
	e.calls = append(e.calls, firedCall{EntryName: entryName, RunID: runID})
	e.mu.Unlock()
}

func (e *stubEmitter) getCalls() []firedCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]firedCall, len(e.calls))
	copy(out, e.calls)
	return out
}

// runSpy tracks run calls with thread safety.
type runSpy struct {
	mu    sync.Mutex
	calls []*action.Invocation
	err   error
}

func (r *runSpy) Fn() cron.RunFunc {
	return func(_ context.Context, inv *action.Invocation) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, inv)
		return r.err
	}
}

func (r *runSpy) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *runSpy) Last() *action.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func pullEntry(name, schedule string) cron.Entry {
	return cron.Entry{
		Name:          name,
		Schedule:      schedule,
		IntegrationID: "org1",
		ActionID:      "pull_observations",
		Config:        json.RawMessage(`{"max_concurrency":2}`),
	}
}

func TestParseSchedule(t *testing.T) {
	for _, expr := range []string{"*/5 * * * *", "@every 5m", "@hourly", "0 9 * * 1-5"} {
		if _, err := cron.ParseSchedule(expr); err != nil {
			t.Errorf("ParseSchedule(%q): %v", expr, err)
		}
	}
	for _, expr := range []string{"", "* * *", "@every nope", "0 0 * * * *"} {
		if _, err := cron.ParseSchedule(expr); err == nil {
			t.Errorf("ParseSchedule(%q): expected error", expr)
		}
	}
}

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name  string
		entry cron.Entry
	}{
		{"no name", cron.Entry{Schedule: "@hourly", IntegrationID: "a", ActionID: "b"}},
		{"no schedule", cron.Entry{Name: "n", IntegrationID: "a", ActionID: "b"}},
		{"no integration", cron.Entry{Name: "n", Schedule: "@hourly", ActionID: "b"}},
		{"bad schedule", cron.Entry{Name: "n", Schedule: "whenever", IntegrationID: "a", ActionID: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); !errors.Is(err, onyesha.ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if err := pullEntry("pull", "@every 5m").Validate(); err != nil {
		t.Errorf("valid entry: %v", err)
	}
}

func TestScheduler_AddDuplicate(t *testing.T) {
	s := cron.NewScheduler((&runSpy{}).Fn(), nil)
	if err := s.Add(pullEntry("pull", "@hourly")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(pullEntry("pull", "@daily")); !errors.Is(err, onyesha.ErrScheduleExists) {
		t.Errorf("duplicate Add = %v, want ErrScheduleExists", err)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	spy := &runSpy{}
	emitter := &stubEmitter{}
	s := cron.NewScheduler(spy.Fn(), nil, cron.WithEmitter(emitter))
	if err := s.Add(pullEntry("pull", "@hourly")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.RunNow(context.Background(), "pull"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	inv := spy.Last()
	if inv == nil {
		t.Fatal("run not called")
	}
	if inv.IntegrationID != "org1" || inv.ActionID != "pull_observations" {
		t.Errorf("invocation = %+v", inv)
	}
	if string(inv.Config) != `{"max_concurrency":2}` {
		t.Errorf("config = %s", inv.Config)
	}
	if inv.RunID.Prefix() != id.PrefixRun {
		t.Errorf("run id %s has wrong prefix", inv.RunID)
	}

	calls := emitter.getCalls()
	if len(calls) != 1 || calls[0].EntryName != "pull" || calls[0].RunID != inv.RunID {
		t.Errorf("emitter calls = %+v, want one for run %s", calls, inv.RunID)
	}
}

func TestScheduler_RunNowUnknown(t *testing.T) {
	s := cron.NewScheduler((&runSpy{}).Fn(), nil)
	if err := s.RunNow(context.Background(), "missing"); !errors.Is(err, onyesha.ErrScheduleNotFound) {
		t.Errorf("RunNow = %v, want ErrScheduleNotFound", err)
	}
}

func TestScheduler_RunErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	spy := &runSpy{err: boom}
	s := cron.NewScheduler(spy.Fn(), nil)
	_ = s.Add(pullEntry("pull", "@hourly"))

	if err := s.RunNow(context.Background(), "pull"); !errors.Is(err, boom) {
		t.Errorf("RunNow = %v, want boom", err)
	}
}

func TestScheduler_LockHeldElsewhere(t *testing.T) {
	locks := memory.New()
	ctx := context.Background()
	if ok, _ := locks.TryLock(ctx, "onyesha_cron_lock.pull", "other-replica", time.Minute); !ok {
		t.Fatal("seed lock failed")
	}

	spy := &runSpy{}
	s := cron.NewScheduler(spy.Fn(), nil, cron.WithLocker(locks))
	_ = s.Add(pullEntry("pull", "@hourly"))

	if err := s.RunNow(ctx, "pull"); !errors.Is(err, onyesha.ErrScheduleLocked) {
		t.Fatalf("RunNow = %v, want ErrScheduleLocked", err)
	}
	if spy.Count() != 0 {
		t.Errorf("run called %d times while locked", spy.Count())
	}
}

func TestScheduler_LockReleasedAfterRun(t *testing.T) {
	locks := memory.New()
	ctx := context.Background()

	spy := &runSpy{}
	s := cron.NewScheduler(spy.Fn(), nil, cron.WithLocker(locks))
	_ = s.Add(pullEntry("pull", "@hourly"))

	if err := s.RunNow(ctx, "pull"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if ok, _ := locks.TryLock(ctx, "onyesha_cron_lock.pull", "other-replica", time.Minute); !ok {
		t.Error("lock still held after the run finished")
	}
}

func TestScheduler_Remove(t *testing.T) {
	s := cron.NewScheduler((&runSpy{}).Fn(), nil)
	_ = s.Add(pullEntry("pull", "@hourly"))

	if !s.Remove("pull") {
		t.Fatal("Remove returned false for a scheduled entry")
	}
	if s.Remove("pull") {
		t.Error("second Remove returned true")
	}
	if len(s.Entries()) != 0 {
		t.Errorf("Entries = %v, want none", s.Entries())
	}
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	spy := &runSpy{}
	s := cron.NewScheduler(spy.Fn(), nil)
	if err := s.Add(pullEntry("pull", "@every 1s")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	entries := s.Entries()
	if len(entries) != 1 || entries[0].Next.IsZero() {
		t.Fatalf("Entries = %+v, want a next run time", entries)
	}

	deadline := time.Now().Add(5 * time.Second)
	for spy.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if spy.Count() == 0 {
		t.Fatal("entry never fired")
	}
}

func TestScheduler_StopCancelsRunsAfterDeadline(t *testing.T) {
	started := make(chan struct{}, 1)
	cancelled := make(chan struct{})
	run := func(ctx context.Context, _ *action.Invocation) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}

	s := cron.NewScheduler(run, nil)
	_ = s.Add(pullEntry("pull", "@every 1s"))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("entry never fired")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop = %v, want DeadlineExceeded", err)
	}

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Error("in-flight run was not cancelled")
	}
}
