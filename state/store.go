package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/retry"
)

// meterName is the instrumentation scope name for state metrics.
const meterName = "github.com/PADAS/gundi-integration-onyesha/state"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithPolicy replaces the retry policy. A nil Retryable falls back to
// IsTransient.
func WithPolicy(p retry.Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock sets the time source used to materialize default checkpoints.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMeterProvider records metrics through mp instead of the global
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Store) { s.meter = mp.Meter(meterName) }
}

// Store reads and writes checkpoint records. It holds no state besides the
// backend handle and is safe for concurrent use; concurrent writers to the
// same key race and the last one wins.
type Store struct {
	backend Backend
	policy  retry.Policy
	logger  *slog.Logger
	now     func() time.Time

	meter      metric.Meter
	operations metric.Int64Counter
	retries    metric.Int64Counter
}

// New creates a Store over backend. The caller owns the backend lifecycle.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		policy:  retry.Default(IsTransient),
		logger:  slog.Default(),
		now:     time.Now,
		meter:   otel.Meter(meterName),
	}
	for _, o := range opts {
		o(s)
	}
	if s.policy.Retryable == nil {
		s.policy.Retryable = IsTransient
	}

	// Instrument errors fall back to noop instruments.
	s.operations, _ = s.meter.Int64Counter(
		"onyesha.state.operations",
		metric.WithDescription("State store operations by result"),
		metric.WithUnit("{operation}"),
	)
	s.retries, _ = s.meter.Int64Counter(
		"onyesha.state.retries",
		metric.WithDescription("State backend calls retried after a transient error"),
		metric.WithUnit("{retry}"),
	)
	return s
}

// Get returns the record stored at key. A key that was never written, or
// holds an empty or null value, yields the empty Record and no error. A
// stored record is normalized: a missing last_run becomes DefaultLastRun.
// Malformed JSON returns onyesha.ErrCorruptRecord without retrying.
func (s *Store) Get(ctx context.Context, key Key) (Record, error) {
	rec, present, err := s.get(ctx, key)
	if err != nil || !present {
		return Record{}, err
	}
	return rec.Normalize(s.now()), nil
}

// Load is Get followed by Normalize, so the result always carries a
// usable LastRun even for a source that was never seen.
func (s *Store) Load(ctx context.Context, key Key) (Record, error) {
	rec, _, err := s.Lookup(ctx, key)
	return rec, err
}

// Lookup is Load that also reports whether LastRun was stored. When it
// was not, LastRun is DefaultLastRun at the time of the call and must not
// be written back as a checkpoint.
func (s *Store) Lookup(ctx context.Context, key Key) (rec Record, stored bool, err error) {
	rec, _, err = s.get(ctx, key)
	if err != nil {
		return Record{}, false, err
	}
	stored = !rec.LastRun.IsZero()
	return rec.Normalize(s.now()), stored, nil
}

// get reads and decodes the record at key without normalizing it. present
// is false for an absent, empty or null value.
func (s *Store) get(ctx context.Context, key Key) (rec Record, present bool, err error) {
	if err := key.Validate(); err != nil {
		return Record{}, false, err
	}
	k := key.String()

	raw, err := retry.DoValue(ctx, s.policyFor("get", k), func(ctx context.Context) ([]byte, error) {
		return s.backend.Get(ctx, k)
	})
	if err != nil {
		s.record(ctx, "get", err)
		return Record{}, false, fmt.Errorf("onyesha/state: get %s: %w", k, err)
	}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		s.record(ctx, "get", nil)
		return Record{}, false, nil
	}

	if err := json.Unmarshal(raw, &rec); err != nil {
		s.record(ctx, "get", err)
		return Record{}, false, fmt.Errorf("%w: %s: %v", onyesha.ErrCorruptRecord, k, err)
	}
	s.record(ctx, "get", nil)
	return rec, true, nil
}

// Set overwrites the record at key unconditionally.
func (s *Store) Set(ctx context.Context, key Key, rec Record) error {
	if err := key.Validate(); err != nil {
		return err
	}
	k := key.String()

	data, err := json.Marshal(rec)
	if err != nil {
		s.record(ctx, "set", err)
		return fmt.Errorf("onyesha/state: encode %s: %w", k, err)
	}

	err = retry.Do(ctx, s.policyFor("set", k), func(ctx context.Context) error {
		return s.backend.Set(ctx, k, data)
	})
	s.record(ctx, "set", err)
	if err != nil {
		return fmt.Errorf("onyesha/state: set %s: %w", k, err)
	}
	return nil
}

// Delete removes the record at key. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	k := key.String()

	err := retry.Do(ctx, s.policyFor("delete", k), func(ctx context.Context) error {
		return s.backend.Delete(ctx, k)
	})
	s.record(ctx, "delete", err)
	if err != nil {
		return fmt.Errorf("onyesha/state: delete %s: %w", k, err)
	}
	return nil
}

// policyFor copies the store policy and attaches per-operation retry
// logging and counting.
func (s *Store) policyFor(op, key string) retry.Policy {
	p := s.policy
	next := p.OnRetry
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		s.logger.Warn("state backend call failed, retrying",
			slog.String("op", op),
			slog.String("key", key),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		s.retries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
		if next != nil {
			next(attempt, delay, err)
		}
	}
	return p
}

func (s *Store) record(ctx context.Context, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
}

// List returns the keys of every source recorded for an action. Backends
// that do not implement Lister yield an error matching errors.ErrUnsupported.
func (s *Store) List(ctx context.Context, integrationID, actionID string) ([]Key, error) {
	probe := Key{IntegrationID: integrationID, ActionID: actionID}
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	lister, ok := s.backend.(Lister)
	if !ok {
		return nil, fmt.Errorf("onyesha/state: list: backend %T: %w", s.backend, errors.ErrUnsupported)
	}
	prefix := actionPrefix(integrationID, actionID)

	raw, err := retry.DoValue(ctx, s.policyFor("list", prefix), func(ctx context.Context) ([]string, error) {
		return lister.Keys(ctx, prefix)
	})
	s.record(ctx, "list", err)
	if err != nil {
		return nil, fmt.Errorf("onyesha/state: list %s: %w", prefix, err)
	}

	keys := make([]Key, 0, len(raw))
	for _, r := range raw {
		k, perr := ParseKey(r)
		if perr != nil {
			s.logger.Warn("skipping unparseable state key", slog.String("key", r), slog.String("error", perr.Error()))
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Source() < keys[j].Source() })
	return keys, nil
}
