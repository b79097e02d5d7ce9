package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// runLockKey guards the inactivity evaluation batch entry point.
	runLockKey = "lock:inactivity_run"
	// runLockTTL caps how long a crashed run can hold the lock.
	runLockTTL = time.Hour
)

// releaseLockScript deletes the lock only if this holder still owns it.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RunLock is a best-effort distributed lock for the evaluation run. It
// implements the core's RunLock interface.
type RunLock struct {
	cache *Cache
}

// NewRunLock creates a RunLock on top of the shared Redis client.
func NewRunLock(cache *Cache) *RunLock {
	return &RunLock{cache: cache}
}

// Acquire attempts to take the lock. Returns ok=false when another run
// holds it. The release func is safe to call even after the TTL expired;
// it only deletes the key if this holder still owns it.
func (l *RunLock) Acquire(ctx context.Context) (func(), bool, error) {
	holder := uuid.New().String()

	ok, err := l.cache.client.SetNX(ctx, runLockKey, holder, runLockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Best effort; the TTL is the backstop.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseLockScript.Run(ctx, l.cache.client, []string{runLockKey}, holder).Err()
	}
	return release, true, nil
}
