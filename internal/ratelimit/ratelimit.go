// Package ratelimit throttles expensive endpoints per authenticated user.
package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/creatorlens/server/internal/errors"
	"codeberg.org/creatorlens/server/internal/logger"
)

const keyPrefix = "ratelimit"

// returns a redis-backed store when a client is given, in-memory otherwise
// the memory store only limits within one process
func NewStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   keyPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return store, nil
}

// limits requests per user_id (client IP when unauthenticated)
// formatted uses the "<limit>-<period>" syntax, e.g. "10-M"
func PerUser(name, formatted string, store limiter.Store) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q for %s: %w", formatted, name, err)
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithKeyGetter(func(c *gin.Context) string {
			if userID := c.GetString("user_id"); userID != "" {
				return name + ":user:" + userID
			}
			return name + ":ip:" + c.ClientIP()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("rate limit reached",
				"limiter", name,
				"user_id", c.GetString("user_id"),
				"path", c.Request.URL.Path,
			)
			errors.TooManyRequests(c, "too many requests, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			errors.InternalError(c, "rate limiter unavailable", err)
		}),
	), nil
}
