package cron

import (
	"context"
	"time"
)

// Locker grants exclusive, expiring ownership of a named lock. It keeps
// replicas sharing one checkpoint store from firing the same entry twice.
type Locker interface {
	// TryLock acquires name for owner for ttl. It returns false without
	// error when another owner holds the lock.
	TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	// Unlock releases name if owner still holds it.
	Unlock(ctx context.Context, name, owner string) error
}

// lockName is the key an entry is locked under.
func lockName(entry string) string { return "onyesha_cron_lock." + entry }
