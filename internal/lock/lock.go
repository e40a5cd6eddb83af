// Package lock serializes work on a single consignor or item across requests.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
)

var ErrNotObtained = errors.New("lock not obtained")

const (
	retryInterval = 25 * time.Millisecond
	retryAttempts = 8
)

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out short-lived exclusive locks keyed by string. Obtain
// retries briefly and then returns ErrNotObtained.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// RedisLocker shares locks between processes through Redis.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	held, err := l.client.Obtain(ctx, "consignhub:lock:"+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), retryAttempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return held, nil
}

// LocalLocker keeps locks in process memory. It is used with the in-memory
// store or when Redis is not configured.
type LocalLocker struct {
	mu        sync.Mutex
	held      map[string]localLease
	nextToken uint64
	now       func() time.Time
}

// localLease identifies one acquisition of a key. A release only clears
// the lease it was issued for.
type localLease struct {
	token     uint64
	expiresAt time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLease), now: time.Now}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	for attempt := 0; ; attempt++ {
		if token, ok := l.tryObtain(key, ttl); ok {
			return &localLock{locker: l, key: key, token: token}, nil
		}
		if attempt >= retryAttempts {
			return nil, ErrNotObtained
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *LocalLocker) tryObtain(key string, ttl time.Duration) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expiresAt) {
		return 0, false
	}
	l.nextToken++
	l.held[key] = localLease{token: l.nextToken, expiresAt: now.Add(ttl)}
	return l.nextToken, true
}

type localLock struct {
	locker *LocalLocker
	key    string
	token  uint64
	once   sync.Once
}

// Release is a no-op once the lease has expired and another caller took the key.
func (l *localLock) Release(_ context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		if lease, ok := l.locker.held[l.key]; ok && lease.token == l.token {
			delete(l.locker.held, l.key)
		}
		l.locker.mu.Unlock()
	})
	return nil
}
