package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestLock_AcquireAndRelease(t *testing.T) {
	l, mr := newTestLocker(t, 10*time.Second)

	unlock, err := l.Lock(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"a@b.com"))
	assert.Equal(t, 10*time.Second, mr.TTL(keyPrefix+"a@b.com"))

	unlock()
	assert.False(t, mr.Exists(keyPrefix+"a@b.com"))
}

func TestLock_BlocksSecondHolder(t *testing.T) {
	l, _ := newTestLocker(t, 10*time.Second)

	unlock, err := l.Lock(context.Background(), "a@b.com")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a@b.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLock_WaiterAcquiresAfterRelease(t *testing.T) {
	l, _ := newTestLocker(t, 10*time.Second)

	unlock, err := l.Lock(context.Background(), "a@b.com")
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		u, err := l.Lock(ctx, "a@b.com")
		if err == nil {
			u()
		}
		acquired <- err
	}()

	time.Sleep(50 * time.Millisecond)
	unlock()
	assert.NoError(t, <-acquired)
}

func TestUnlock_DoesNotDeleteForeignLock(t *testing.T) {
	l, mr := newTestLocker(t, time.Second)

	unlock, err := l.Lock(context.Background(), "a@b.com")
	require.NoError(t, err)

	// The lock expires and another holder takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(keyPrefix+"a@b.com", "someone-else"))

	unlock()
	got, err := mr.Get(keyPrefix + "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestNewFromURL_Invalid(t *testing.T) {
	_, err := NewFromURL("::not a url", time.Second)
	assert.ErrorContains(t, err, "parse redis url")
}
