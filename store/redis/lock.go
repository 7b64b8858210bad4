package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock only while it still belongs to the caller.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock acquires name for owner with SET NX PX. It implements
// cron.Locker.
func (s *Store) TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, name, owner, ttl).Result()
	if err != nil {
		return false, classify("lock", name, err)
	}
	return ok, nil
}

// Unlock releases name if owner still holds it. A lock that expired or
// moved to another owner is left alone.
func (s *Store) Unlock(ctx context.Context, name, owner string) error {
	if err := unlockScript.Run(ctx, s.client, []string{name}, owner).Err(); err != nil {
		return classify("unlock", name, err)
	}
	return nil
}
