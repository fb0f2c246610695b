package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*RedisPairLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	locker := NewRedisPairLocker(rdb, 5*time.Second)
	locker.attempts = 3
	locker.wait = 10 * time.Millisecond
	return locker, mr
}

func TestRedisPairLocker_KeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, pairLockKey(7, 3), pairLockKey(3, 7))
	assert.Equal(t, "lock:friendship:3:7", pairLockKey(7, 3))
}

func TestRedisPairLocker_LockAndRelease(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)

	unlock, err := locker.Lock(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:friendship:1:2"))

	unlock()
	assert.False(t, mr.Exists("lock:friendship:1:2"))
}

func TestRedisPairLocker_ContendedPairTimesOut(t *testing.T) {
	ctx := context.Background()
	locker, _ := newTestLocker(t)

	unlock, err := locker.Lock(ctx, 1, 2)
	require.NoError(t, err)
	defer unlock()

	// reversed order hits the same key
	_, err = locker.Lock(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	// an unrelated pair is unaffected
	unlockOther, err := locker.Lock(ctx, 1, 3)
	require.NoError(t, err)
	unlockOther()
}

func TestRedisPairLocker_StaleUnlockKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	locker, mr := newTestLocker(t)

	unlock, err := locker.Lock(ctx, 1, 2)
	require.NoError(t, err)

	// first holder's lease expires and someone else takes the lock
	mr.FastForward(10 * time.Second)
	unlockSecond, err := locker.Lock(ctx, 1, 2)
	require.NoError(t, err)

	unlock()
	assert.True(t, mr.Exists("lock:friendship:1:2"))

	unlockSecond()
	assert.False(t, mr.Exists("lock:friendship:1:2"))
}
