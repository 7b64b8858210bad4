// Package state is the integration state cache: one checkpoint Record per
// (integration, action, source) triple, persisted in a key/value Backend.
//
// Every backend call runs under a retry.Policy. Transient backend errors
// (connection failures, timeouts, transient server replies) are retried
// with exponential backoff and jitter; anything else is returned at once.
//
//	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr(), DB: cfg.RedisStateDB})
//	st := state.New(redisstore.New(rdb), state.WithLogger(logger))
//
//	key := state.Key{IntegrationID: "org1", ActionID: "pull_observations", SourceID: "dev42"}
//	rec, err := st.Load(ctx, key) // LastRun defaults to now - 7 days
//	...
//	err = st.Set(ctx, key, state.NewRecord(windowEnd, ""))
package state
