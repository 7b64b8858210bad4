package state

import (
	"context"
	"errors"
	"fmt"
)

// Backend is the key/value protocol the store persists records through.
// Single-key operations must be atomic; no other guarantee is required.
type Backend interface {
	// Get returns the value at key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value at key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// BackendError reports a failed backend call together with its retry
// classification. Backends wrap their client errors in it.
type BackendError struct {
	Op        string
	Key       string
	Err       error
	Transient bool
}

func (e *BackendError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("state backend %s %q (%s): %v", e.Op, e.Key, kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a BackendError classified as
// transient. It is the default retry classifier of the store.
func IsTransient(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Transient
}

// Lister is implemented by backends that can enumerate keys.
type Lister interface {
	// Keys returns every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
