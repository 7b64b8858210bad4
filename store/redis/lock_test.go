package redis

import (
	"context"
	"testing"
	"time"
)

func TestStore_TryLock(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	ok, err := s.TryLock(ctx, "onyesha_cron_lock.pull", "a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock(a) = %v, %v; want true", ok, err)
	}
	ok, err = s.TryLock(ctx, "onyesha_cron_lock.pull", "b", time.Minute)
	if err != nil || ok {
		t.Fatalf("TryLock(b) = %v, %v; want false", ok, err)
	}
	if ttl := mr.TTL("onyesha_cron_lock.pull"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	ok, err = s.TryLock(ctx, "onyesha_cron_lock.pull", "b", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock(b) after expiry = %v, %v; want true", ok, err)
	}
}

func TestStore_UnlockOnlyOwner(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := s.TryLock(ctx, "lk", "a", time.Minute); err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if err := s.Unlock(ctx, "lk", "b"); err != nil {
		t.Fatalf("Unlock(b): %v", err)
	}
	if !mr.Exists("lk") {
		t.Fatal("lock released by a non-owner")
	}
	if err := s.Unlock(ctx, "lk", "a"); err != nil {
		t.Fatalf("Unlock(a): %v", err)
	}
	if mr.Exists("lk") {
		t.Error("lock still held after owner unlock")
	}
}
