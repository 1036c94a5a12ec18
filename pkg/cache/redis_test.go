package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisPair(t *testing.T) (*miniredis.Miniredis, *RedisCache, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	open := func() *RedisCache {
		c, err := NewRedisCache(WithRedisAddr(mr.Addr()), WithRedisPrefix("test"))
		if err != nil {
			t.Fatalf("NewRedisCache: %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
	return mr, open(), open()
}

func TestRedisLockIsExclusive(t *testing.T) {
	_, a, b := newRedisPair(t)
	ctx := context.Background()

	if ok, err := a.TryLock(ctx, "lock:sweep", time.Minute); err != nil || !ok {
		t.Fatalf("first TryLock = %v, %v", ok, err)
	}
	if ok, err := b.TryLock(ctx, "lock:sweep", time.Minute); err != nil || ok {
		t.Fatalf("second TryLock = %v, %v", ok, err)
	}
	if err := a.Unlock(ctx, "lock:sweep"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if ok, err := b.TryLock(ctx, "lock:sweep", time.Minute); err != nil || !ok {
		t.Fatalf("TryLock after release = %v, %v", ok, err)
	}
}

func TestRedisUnlockAfterExpiryKeepsNewOwner(t *testing.T) {
	mr, a, b := newRedisPair(t)
	ctx := context.Background()

	if ok, _ := a.TryLock(ctx, "lock:sweep", time.Second); !ok {
		t.Fatalf("a should take the lock")
	}
	mr.FastForward(2 * time.Second)
	if ok, _ := b.TryLock(ctx, "lock:sweep", time.Minute); !ok {
		t.Fatalf("b should take the expired lock")
	}

	// a overran its ttl; releasing must not drop b's lock
	if err := a.Unlock(ctx, "lock:sweep"); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("stale Unlock err = %v, want ErrNotLocked", err)
	}
	if held, err := b.Exists(ctx, "lock:sweep"); err != nil || !held {
		t.Fatalf("b's lock was released by a stale owner (exists=%v err=%v)", held, err)
	}

	if err := b.Unlock(ctx, "lock:sweep"); err != nil {
		t.Fatalf("owner Unlock: %v", err)
	}
	if held, _ := b.Exists(ctx, "lock:sweep"); held {
		t.Fatalf("lock still present after owner Unlock")
	}
}

func TestRedisUnlockWithoutLock(t *testing.T) {
	_, a, _ := newRedisPair(t)
	if err := a.Unlock(context.Background(), "lock:none"); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("err = %v", err)
	}
}
