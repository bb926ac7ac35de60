package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the Redis store
type Config struct {
	RedisURL  string // Redis URL (defaults to AUTHSVC_REDIS_URL or redis://localhost:6379/0)
	KeyPrefix string // Key prefix for all store keys (defaults to "authsvc:")
}

// RedisStore implements Store on top of a Redis server. SETNX backs
// SetIfAbsent and INCR backs Incr, so uniqueness and counter monotonicity
// hold without any client-side locking.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, config Config) (*RedisStore, error) {
	redisURL := config.RedisURL
	if redisURL == "" {
		redisURL = os.Getenv("AUTHSVC_REDIS_URL")
	}
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "authsvc:"
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return val, nil
}

// SetIfAbsent stores value under key unless the key already exists.
func (s *RedisStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return unavailable("setnx", err)
	}
	if !ok {
		return ErrKeyExists
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return unavailable("del", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Incr atomically increments the named counter.
func (s *RedisStore) Incr(ctx context.Context, name string) (int64, error) {
	val, err := s.client.Incr(ctx, s.key(name)).Result()
	if err != nil {
		return 0, unavailable("incr", err)
	}
	return val, nil
}

// unavailable wraps a transport-level Redis failure so callers can detect it
// with errors.Is(err, ErrUnavailable).
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
