// Package redis implements state.Backend on Redis. Each checkpoint record
// is a plain string value holding its JSON encoding; single-key GET, SET and
// DEL are atomic on the server so no client-side locking is needed.
//
// The caller owns the Redis client lifecycle -- the store never closes it:
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379", DB: 0})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
//
// Client errors are wrapped in state.BackendError. Network failures, pool
// timeouts and transient server replies (LOADING, BUSY, TRYAGAIN, ...) are
// classified as transient so the state store retries them.
package redis
