package store

import (
	"context"

	"github.com/PADAS/gundi-integration-onyesha/cron"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// Store is the aggregate backend interface.
type Store interface {
	state.Backend
	state.Lister
	cron.Locker

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases resources the store owns.
	Close() error
}
