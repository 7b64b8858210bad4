package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// RunFunc executes one invocation. The engine provides the implementation,
// which keeps this package free of engine imports.
type RunFunc func(ctx context.Context, inv *action.Invocation) error

// Emitter emits schedule lifecycle events.
// ext.Registry satisfies this interface via EmitScheduleFired.
type Emitter interface {
	EmitScheduleFired(ctx context.Context, entryName string, runID id.ID)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithEmitter sets the receiver of ScheduleFired events.
func WithEmitter(e Emitter) SchedulerOption {
	return func(s *Scheduler) { s.emitter = e }
}

// WithLocker guards every firing with a lock shared between schedulers.
func WithLocker(l Locker) SchedulerOption {
	return func(s *Scheduler) { s.locker = l }
}

// WithLockTTL sets how long a firing holds its entry lock. It should
// exceed the longest expected run.
func WithLockTTL(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.lockTTL = d }
}

// WithLocation sets the time zone schedules are evaluated in.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) { s.location = loc }
}

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

type scheduled struct {
	entry Entry
	id    cronlib.EntryID
}

// Scheduler fires entries on their schedules. A run still in progress when
// its next tick arrives causes that tick to be skipped.
type Scheduler struct {
	run      RunFunc
	emitter  Emitter
	locker   Locker
	logger   *slog.Logger
	owner    string
	lockTTL  time.Duration
	location *time.Location

	c *cronlib.Cron

	mu      sync.Mutex
	entries map[string]scheduled
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler creates a Scheduler that hands due invocations to run.
func NewScheduler(run RunFunc, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		run:      run,
		logger:   logger,
		owner:    id.NewScheduleID().String(),
		lockTTL:  15 * time.Minute,
		location: time.UTC,
		entries:  make(map[string]scheduled),
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{logger}
	s.c = cronlib.New(
		cronlib.WithParser(cronParser),
		cronlib.WithLocation(s.location),
		cronlib.WithLogger(cl),
		cronlib.WithChain(cronlib.Recover(cl), cronlib.SkipIfStillRunning(cl)),
	)
	return s
}

// Owner returns the identity this scheduler takes locks under.
func (s *Scheduler) Owner() string { return s.owner }

// Add schedules entry. Names are unique within a scheduler.
func (s *Scheduler) Add(entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	sched, err := ParseSchedule(entry.Schedule)
	if err != nil {
		return fmt.Errorf("%w: %v", onyesha.ErrInvalidConfig, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.Name]; ok {
		return fmt.Errorf("%w: %s", onyesha.ErrScheduleExists, entry.Name)
	}
	eid := s.c.Schedule(sched, cronlib.FuncJob(func() {
		_ = s.fire(s.baseContext(), entry)
	}))
	s.entries[entry.Name] = scheduled{entry: entry, id: eid}

	s.logger.Info("cron entry scheduled",
		slog.String("entry", entry.Name),
		slog.String("schedule", entry.Schedule),
		slog.String("action_id", entry.ActionID),
		slog.String("integration_id", entry.IntegrationID),
	)
	return nil
}

// Remove unschedules the named entry. It reports whether the entry existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.entries[name]
	if !ok {
		return false
	}
	s.c.Remove(sc.id)
	delete(s.entries, name)
	return true
}

// Entries returns the status of every entry sorted by name. Next is zero
// until the scheduler has started.
func (s *Scheduler) Entries() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.entries))
	for name, sc := range s.entries {
		ce := s.c.Entry(sc.id)
		out = append(out, Status{Name: name, Prev: ce.Prev, Next: ce.Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow fires the named entry immediately on the calling goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	sc, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", onyesha.ErrScheduleNotFound, name)
	}
	return s.fire(ctx, sc.entry)
}

// Start begins firing entries. Runs inherit ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.c.Start()

	s.logger.Info("cron scheduler started",
		slog.String("owner", s.owner),
		slog.Int("entries", len(s.entries)),
	)
	return nil
}

// Stop stops firing and waits for in-flight runs. If ctx ends first the
// runs are cancelled and ctx's error is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	defer cancel()
	done := s.c.Stop()
	select {
	case <-done.Done():
		s.logger.Info("cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timed out, cancelling runs")
		return ctx.Err()
	}
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// fire runs entry once under its lock.
func (s *Scheduler) fire(ctx context.Context, entry Entry) error {
	logger := s.logger.With(slog.String("entry", entry.Name))

	if s.locker != nil {
		name := lockName(entry.Name)
		ok, err := s.locker.TryLock(ctx, name, s.owner, s.lockTTL)
		if err != nil {
			logger.Error("cron lock failed", slog.String("error", err.Error()))
			return fmt.Errorf("onyesha/cron: lock %s: %w", entry.Name, err)
		}
		if !ok {
			logger.Debug("cron entry held by another scheduler")
			return fmt.Errorf("%w: %s", onyesha.ErrScheduleLocked, entry.Name)
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), name, s.owner); err != nil {
				logger.Warn("cron unlock failed", slog.String("error", err.Error()))
			}
		}()
	}

	inv := &action.Invocation{
		RunID:         id.NewRunID(),
		IntegrationID: entry.IntegrationID,
		ActionID:      entry.ActionID,
		Config:        entry.Config,
		StartedAt:     time.Now().UTC(),
	}
	if s.emitter != nil {
		s.emitter.EmitScheduleFired(ctx, entry.Name, inv.RunID)
	}

	if err := s.run(ctx, inv); err != nil {
		logger.Error("scheduled run failed",
			slog.String("run_id", inv.RunID.String()),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// cronLogger adapts slog to the robfig/cron logger interface. Its routine
// messages are demoted to debug.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
