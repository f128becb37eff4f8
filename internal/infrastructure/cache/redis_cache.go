package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ZipTales/internal/credibility"
	"ZipTales/internal/ports"
)

const keyPrefix = "ziptales:credibility:"

// RedisCache stores analyses as JSON strings with a fixed TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.ResultCache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisCacheFromURL parses a redis:// URL and connects lazily.
func NewRedisCacheFromURL(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisCache(redis.NewClient(opts), ttl), nil
}

// Get returns the cached analysis for key, if any.
func (c *RedisCache) Get(ctx context.Context, key string) (credibility.Analysis, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return credibility.Analysis{}, false, nil
	}
	if err != nil {
		return credibility.Analysis{}, false, fmt.Errorf("redis get: %w", err)
	}

	var analysis credibility.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return credibility.Analysis{}, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return analysis, true, nil
}

// Set stores analysis under key.
func (c *RedisCache) Set(ctx context.Context, key string, analysis credibility.Analysis) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
