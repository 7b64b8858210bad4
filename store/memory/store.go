// Package memory implements state.Backend in process memory. It is safe for
// concurrent use and intended for tests and local development. Failures can
// be injected to exercise the store's retry policy.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/PADAS/gundi-integration-onyesha/cron"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// Compile-time interface checks.
var (
	_ state.Backend = (*Store)(nil)
	_ state.Lister  = (*Store)(nil)
	_ cron.Locker   = (*Store)(nil)
)

// ErrInjected is the cause of every injected failure.
var ErrInjected = errors.New("memory: injected failure")

// Store is an in-memory key/value backend.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	lockMu sync.Mutex
	locks  map[string]lock

	faultMu   sync.Mutex
	faults    int
	transient bool
	calls     int
}

// New returns a new empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte), locks: make(map[string]lock)}
}

// ──────────────────────────────────────────────────
// Lifecycle: Ping / Close
// ──────────────────────────────────────────────────

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Fault injection
// ──────────────────────────────────────────────────

// FailNext makes the next n backend calls fail with ErrInjected, wrapped
// in a state.BackendError with the given transient classification.
func (m *Store) FailNext(n int, transient bool) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	m.faults = n
	m.transient = transient
}

// Calls returns how many backend calls were made, failed ones included.
func (m *Store) Calls() int {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	return m.calls
}

func (m *Store) fault(op, key string) error {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	m.calls++
	if m.faults <= 0 {
		return nil
	}
	m.faults--
	return &state.BackendError{Op: op, Key: key, Err: ErrInjected, Transient: m.transient}
}

// ──────────────────────────────────────────────────
// state.Backend
// ──────────────────────────────────────────────────

// Get returns a copy of the value at key, or nil when absent.
func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fault("get", key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Set stores a copy of value.
func (m *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.fault("set", key); err != nil {
		return err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = cp
	return nil
}

// Delete removes key.
func (m *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.fault("delete", key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns every key with the given prefix.
func (m *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fault("keys", prefix); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Raw stores value at key without encoding, for seeding fixtures that a
// different writer would have produced.
func (m *Store) Raw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Len returns the number of stored keys.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
