package guest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores values under prefix+key, optionally expiring them.
// Useful when several clients of one shopper share guest state.
type RedisSlot struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSlot connects using a redis:// URL and verifies the connection.
func NewRedisSlot(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisSlot, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis slot: parse url: %w", err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis slot: ping: %w", err)
	}
	return &RedisSlot{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis slot: get %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes the value; a zero ttl keeps it indefinitely.
func (r *RedisSlot) Set(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis slot: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis slot: delete %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	return r.client.Close()
}
