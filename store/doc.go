// Package store defines the aggregate backend interface the engine owns.
//
// A backend keeps integration checkpoints for the state package and the
// expiring locks the cron scheduler takes before each firing:
//
//	type Store interface {
//	    state.Backend
//	    state.Lister
//	    cron.Locker
//
//	    Ping(ctx context.Context) error
//	    Close() error
//	}
//
// # Available Backends
//
//   - store/redis: Redis backend using go-redis, the production store
//   - store/memory: in-memory store for development and testing
//
// # Usage
//
//	import redisstore "github.com/PADAS/gundi-integration-onyesha/store/redis"
//
//	rdb := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(rdb)
//	defer s.Close()
//
//	eng, err := engine.New(cfg, engine.WithStore(s))
package store
