// Package id defines prefixed, time-ordered identifiers for connector runs.
//
// An ID renders as "prefix_<32 hex digits>" where the suffix is a UUIDv7,
// so IDs sort by creation time and are safe to use in logs and URLs.
package id

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix identifies the entity type encoded in an ID.
type Prefix string

// Prefix constants for connector entities.
const (
	// PrefixRun tags one action execution.
	PrefixRun Prefix = "run"
	// PrefixSchedule tags a scheduler instance.
	PrefixSchedule Prefix = "sched"
)

// ID is a prefix-qualified UUIDv7.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	prefix Prefix
	inner  uuid.UUID
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new ID with the given prefix.
// It panics if the prefix is invalid or the random source fails.
func New(prefix Prefix) ID {
	if !validPrefix(prefix) {
		panic(fmt.Sprintf("id: invalid prefix %q", prefix))
	}
	u, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("id: generate: %v", err))
	}
	return ID{prefix: prefix, inner: u}
}

// NewRunID generates a new run ID.
func NewRunID() ID { return New(PrefixRun) }

// NewScheduleID generates a new scheduler instance ID.
func NewScheduleID() ID { return New(PrefixSchedule) }

// Parse parses "prefix_suffix" into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	i := strings.LastIndexByte(s, '_')
	if i <= 0 {
		return Nil, fmt.Errorf("id: parse %q: missing prefix", s)
	}
	prefix, suffix := Prefix(s[:i]), s[i+1:]
	if !validPrefix(prefix) {
		return Nil, fmt.Errorf("id: parse %q: invalid prefix", s)
	}
	if len(suffix) != 32 {
		return Nil, fmt.Errorf("id: parse %q: suffix must be 32 hex digits", s)
	}
	var raw [16]byte
	if _, err := hex.Decode(raw[:], []byte(suffix)); err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	u, err := uuid.FromBytes(raw[:])
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{prefix: prefix, inner: u}, nil
}

// ParseWithPrefix parses s and checks its prefix.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.prefix != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.prefix)
	}
	return parsed, nil
}

// ParseRunID parses a string and validates the "run" prefix.
func ParseRunID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRun) }

// String returns "prefix_suffix", or "" for Nil.
func (i ID) String() string {
	if i.IsNil() {
		return ""
	}
	return string(i.prefix) + "_" + hex.EncodeToString(i.inner[:])
}

// Prefix returns the entity prefix.
func (i ID) Prefix() Prefix { return i.prefix }

// UUID returns the underlying UUIDv7.
func (i ID) UUID() uuid.UUID { return i.inner }

// IsNil reports whether i is the zero ID.
func (i ID) IsNil() bool { return i.prefix == "" }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields Nil.
func (i *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func validPrefix(p Prefix) bool {
	if p == "" || len(p) > 63 {
		return false
	}
	for _, r := range p {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
