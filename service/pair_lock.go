package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"challenge_hub/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("pair lock not acquired")

// PairLocker serializes friendship writes for one unordered pair of users.
type PairLocker interface {
	Lock(ctx context.Context, x, y int64) (unlock func(), err error)
}

// deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisPairLocker struct {
	rdb      *redis.Client
	ttl      time.Duration
	attempts int
	wait     time.Duration
}

func NewRedisPairLocker(rdb *redis.Client, ttl time.Duration) *RedisPairLocker {
	return &RedisPairLocker{
		rdb:      rdb,
		ttl:      ttl,
		attempts: 30,
		wait:     100 * time.Millisecond,
	}
}

func pairLockKey(x, y int64) string {
	a, b := model.OrderedPair(x, y)
	return fmt.Sprintf("lock:friendship:%d:%d", a, b)
}

// Lock polls SETNX until it wins or runs out of attempts.
func (l *RedisPairLocker) Lock(ctx context.Context, x, y int64) (func(), error) {
	key := pairLockKey(x, y)
	token := uuid.NewString()

	for i := 0; i < l.attempts; i++ {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire pair lock: %w", err)
		}
		if ok {
			return func() {
				// release even if the request context is already gone
				releaseScript.Run(context.WithoutCancel(ctx), l.rdb, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.wait):
		}
	}

	return nil, ErrLockNotAcquired
}
