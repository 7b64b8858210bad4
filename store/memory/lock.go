package memory

import (
	"context"
	"time"
)

type lock struct {
	owner   string
	expires time.Time
}

// TryLock acquires name for owner until ttl elapses. It implements
// cron.Locker.
func (m *Store) TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	now := time.Now()
	if l, ok := m.locks[name]; ok && l.owner != owner && now.Before(l.expires) {
		return false, nil
	}
	m.locks[name] = lock{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

// Unlock releases name if owner holds it.
func (m *Store) Unlock(_ context.Context, name, owner string) error {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	if l, ok := m.locks[name]; ok && l.owner == owner {
		delete(m.locks, name)
	}
	return nil
}
