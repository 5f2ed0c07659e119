package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of *redis.Client the redis backend needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Backend storing each logical key as a plain redis string
// under prefix.
type Redis struct {
	client  RedisClient
	prefix  string
	timeout time.Duration
}

// NewRedis creates a redis backend. Keys are namespaced as prefix+key.
func NewRedis(client RedisClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix, timeout: 2 * time.Second}
}

func (r *Redis) Get(key string) (string, bool, error) {
	const op = "store.Redis.Get"

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

func (r *Redis) Set(key, value string) error {
	const op = "store.Redis.Set"

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
