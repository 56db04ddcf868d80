package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure *redisRateLimiter implements RateLimiter.
var _ RateLimiter = (*redisRateLimiter)(nil)

// RateLimiter tells whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// redisRateLimiter is a fixed-window counter limiter backed by redis.
// Counters live in redis so every instance of the api enforces the
// same budget per caller.
type redisRateLimiter struct {
	logger *zap.Logger
	client *redis.Client
	limit  int64
	window time.Duration
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// NewRedisRateLimiter provides an instance of redis-based rate limiter.
func NewRedisRateLimiter(logger *zap.Logger, client *redis.Client, limit int, window time.Duration) RateLimiter {
	return &redisRateLimiter{
		logger: logger,
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Allow increments the callers counter for the current window and
// reports whether it is still within the budget. The counter key
// expires with the window so idle callers cost nothing.
func (rl *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	counterKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter counter update: %w", err)
	}
	return incr.Val() <= rl.limit, nil
}
