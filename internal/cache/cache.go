package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scoreline/server/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is the TTL cache the services depend on. Implementations must treat
// a miss as (false, nil), never an error.
type Store interface {
	Get(ctx context.Context, namespace, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
}

// Redis is the redis-backed Store used in production. Values are stored as
// JSON under "<prefix>:<namespace>:<key>".
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a redis-backed cache and verifies connectivity
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", addr).Int("db", db).Msg("Connected to redis")

	return &Redis{client: client, prefix: "scoreline"}, nil
}

// Client exposes the underlying redis client for components that need raw
// redis operations (alerts list, locks).
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close closes the redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}

// Get unmarshals the cached value into dest. Returns false on a miss.
func (r *Redis) Get(ctx context.Context, namespace, key string, dest interface{}) (bool, error) {
	start := time.Now()
	raw, err := r.client.Get(ctx, r.key(namespace, key)).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())

	if err == redis.Nil {
		metrics.RecordCacheMiss(namespace)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// A poisoned entry behaves like a miss so callers recompute
		log.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("Dropping undecodable cache entry")
		_ = r.client.Del(ctx, r.key(namespace, key)).Err()
		metrics.RecordCacheMiss(namespace)
		return false, nil
	}

	metrics.RecordCacheHit(namespace)
	return true, nil
}

// Set stores the value as JSON with the given TTL
func (r *Redis) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	start := time.Now()
	err = r.client.Set(ctx, r.key(namespace, key), raw, ttl).Err()
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

// Delete removes a cached entry
func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	start := time.Now()
	err := r.client.Del(ctx, r.key(namespace, key)).Err()
	metrics.RecordCacheOperation("delete", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}

	return nil
}

// Null is a Store that caches nothing, for tests and the one-shot CLI.
type Null struct{}

func (Null) Get(ctx context.Context, namespace, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (Null) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (Null) Delete(ctx context.Context, namespace, key string) error {
	return nil
}
