// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores encoded ranking responses keyed by the dataset they
// were computed from and the canonical selection key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// ErrMiss reports a key with no cached value.
var ErrMiss = errors.New("cache miss")

const (
	keyPrefix  = "comp-sys-rankings:ranking:"
	defaultTTL = time.Hour
)

// Cache stores encoded ranking responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key derives a cache key from the dataset identity (its file path) and the
// canonical selection key.
func Key(dataset, selection string) string {
	sum := sha256.Sum256([]byte(dataset + "\x00" + selection))
	return hex.EncodeToString(sum[:])
}

// redisClient is the part of *redis.Client the cache calls.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client redisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to the server in cfg and verifies it with PING.
func NewRedis(ctx context.Context, cfg types.CacheConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", cfg.RedisAddr, err)
	}
	return newRedis(client, cfg.TTL, logger), nil
}

func newRedis(client redisClient, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	return data, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	r.logger.Debug("cached ranking", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Nop is a Cache that stores nothing.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte) error { return nil }
