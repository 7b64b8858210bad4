package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PADAS/gundi-integration-onyesha/cron"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// Compile-time interface checks.
var (
	_ state.Backend = (*Store)(nil)
	_ state.Lister  = (*Store)(nil)
	_ cron.Locker   = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithScanCount sets the COUNT hint used when enumerating keys.
func WithScanCount(n int64) Option {
	return func(s *Store) { s.scanCount = n }
}

// Store implements state.Backend backed by Redis.
type Store struct {
	client    goredis.Cmdable
	logger    *slog.Logger
	scanCount int64
}

// New creates a new Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default(), scanCount: 100}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.Cmdable { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return classify("ping", "", err)
	}
	return nil
}

// Close is a no-op; the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }

// Get returns the value at key, or nil when the key does not exist.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, classify("get", key, err)
	}
	return v, nil
}

// Set overwrites the value at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return classify("set", key, err)
	}
	return nil
}

// Delete removes key. DEL of a missing key returns 0 and is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return classify("delete", key, err)
	}
	if n == 0 {
		s.logger.Debug("state key already absent", slog.String("key", key))
	}
	return nil
}

// Keys enumerates keys with the given prefix using SCAN, never KEYS, so a
// large keyspace does not block the server.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	pattern := matchPattern(prefix)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, s.scanCount).Result()
		if err != nil {
			return nil, classify("scan", prefix, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return dedupe(keys), nil
}

// String describes the connection like the state manager of the other
// Gundi connectors.
func (s *Store) String() string {
	if c, ok := s.client.(*goredis.Client); ok {
		opt := c.Options()
		return fmt.Sprintf("redis.Store(addr=%s, db=%d)", opt.Addr, opt.DB)
	}
	return "redis.Store"
}

// SCAN may return a key more than once across iterations.
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
