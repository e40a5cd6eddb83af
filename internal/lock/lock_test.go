package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func TestLocalLockerIsExclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	held, err := l.Obtain(ctx, "consignor:c-1", time.Minute)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, "consignor:c-1", time.Minute); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained while held, got %v", err)
	}
	if _, err := l.Obtain(ctx, "consignor:c-2", time.Minute); err != nil {
		t.Fatalf("other keys must stay available: %v", err)
	}

	if err := held.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Obtain(ctx, "consignor:c-1", time.Minute); err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
}

func TestLocalLockerExpiresStaleLocks(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := l.Obtain(ctx, "item:i-1", time.Second); err != nil {
		t.Fatalf("obtain: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, err := l.Obtain(ctx, "item:i-1", time.Second); err != nil {
		t.Fatalf("expected expired lock to be reclaimed, got %v", err)
	}
}

func TestLocalLockerLateReleaseKeepsNewHolder(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := l.Obtain(ctx, "item:i-1", time.Second)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	now = now.Add(2 * time.Second)
	second, err := l.Obtain(ctx, "item:i-1", time.Minute)
	if err != nil {
		t.Fatalf("expected expired lock to be reclaimed, got %v", err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("late release: %v", err)
	}
	if _, err := l.Obtain(ctx, "item:i-1", time.Minute); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected key to stay held by the second caller, got %v", err)
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Obtain(ctx, "item:i-1", time.Minute); err != nil {
		t.Fatalf("expected lock after the holder released, got %v", err)
	}
}

func TestLocalLockerHonorsContext(t *testing.T) {
	l := NewLocalLocker()
	if _, err := l.Obtain(context.Background(), "k", time.Minute); err != nil {
		t.Fatalf("obtain: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Obtain(ctx, "k", time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestRedisLockerIsExclusive(t *testing.T) {
	addr := os.Getenv("CONSIGN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set CONSIGN_TEST_REDIS_ADDR to run redis integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client)
	ctx := context.Background()
	key := "it:" + time.Now().Format(time.RFC3339Nano)

	held, err := l.Obtain(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, key, 5*time.Second); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
	if err := held.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
}
