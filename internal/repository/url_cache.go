package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// URLCache is the fast-path code→URL mapping in front of the durable
// store. It is never authoritative: every failure, of any kind, is
// absorbed here and reported as a miss (reads) or silently dropped
// (writes), so the caller only ever branches on hit/miss.
//
// Calls go through a circuit breaker so a dead Redis costs one failed
// dial per probe window instead of one per request.
type URLCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewURLCache creates a cache wrapper around the given client. A nil
// client is valid and behaves as a cache that always misses.
func NewURLCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *URLCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "url-cache",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &URLCache{
		client:  client,
		ttl:     ttl,
		breaker: breaker,
		logger:  logger,
	}
}

// Get looks up the target URL for a code. The second return value is
// false on a miss or on any cache failure.
func (c *URLCache) Get(ctx context.Context, code string) (string, bool) {
	if c.client == nil {
		return "", false
	}

	val, err := c.breaker.Execute(func() (any, error) {
		target, err := c.client.Get(ctx, code).Result()
		if err != nil {
			// A plain miss must not count as a breaker failure.
			if err == redis.Nil {
				return "", nil
			}
			return "", err
		}
		return target, nil
	})
	if err != nil {
		c.logger.Debug("cache read failed, treating as miss",
			slog.String("code", code),
			slog.String("error", err.Error()))
		return "", false
	}

	target := val.(string)
	if target == "" {
		return "", false
	}
	return target, true
}

// Set writes a code→URL mapping with the fixed TTL. Best effort: any
// failure is logged and swallowed.
func (c *URLCache) Set(ctx context.Context, code, target string) {
	if c.client == nil {
		return
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.Set(ctx, code, target, c.ttl).Err()
	})
	if err != nil {
		c.logger.Debug("cache write failed, skipping",
			slog.String("code", code),
			slog.String("error", err.Error()))
	}
}
