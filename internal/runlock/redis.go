package runlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"codeberg.org/creatorlens/server/internal/logger"
)

const (
	// runlock:{key}
	keyRunLock = "runlock:%s"

	defaultLockTTL       = 5 * time.Minute
	defaultRetryInterval = 100 * time.Millisecond
)

// deletes the lock only if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// implements Locker on Redis so runs serialize across server instances
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
}

// the ttl bounds how long a crashed holder can block others
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
	}
}

// creates a locker from a URL, verifying the connection
func NewRedisLockerFromURL(redisURL string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisLocker(client, ttl), nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf(keyRunLock, key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to set lock %s: %w", key, err)
		}

		if ok {
			return l.releaser(lockKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(lockKey, token string) func() {
	var once sync.Once

	return func() {
		once.Do(func() { l.release(lockKey, token) })
	}
}

func (l *RedisLocker) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
		logger.ErrorErr(err, "failed to release run lock", "key", lockKey)
	}
}

// returns the underlying client, shared with the rate limiter
func (l *RedisLocker) Client() *redis.Client {
	return l.client
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
