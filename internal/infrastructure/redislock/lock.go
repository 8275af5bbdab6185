// Package redislock provides a per-key lock shared by every instance pointing at the same Redis.
package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "account-lock:"
	retryBackoff = 20 * time.Millisecond
)

// releaseLua deletes the lock only if it still holds our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires locks with SET NX PX. ttl bounds how long a crashed holder can block others.
type Locker struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func New(client redis.UniversalClient, ttl time.Duration) *Locker {
	return &Locker{redis: client, ttl: ttl}
}

// NewFromURL parses a redis:// URL and returns a Locker on a fresh client.
func NewFromURL(url string, ttl time.Duration) (*Locker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(redis.NewClient(opts), ttl), nil
}

// Lock polls until key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	k := keyPrefix + key
	for {
		ok, err := l.redis.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseLua.Run(ctx, l.redis, []string{k}, token).Err(); err != nil {
			slog.Warn("failed to release account lock", "key", key, "err", err)
		}
	}, nil
}

// Ping checks connectivity at startup.
func (l *Locker) Ping(ctx context.Context) error {
	return l.redis.Ping(ctx).Err()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
