package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOptions configure a RedisStore.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps layouts in Redis under KeyPrefix + key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("Connected to Redis at %s", opts.Address)
	return &RedisStore{client: client, prefix: opts.KeyPrefix}, nil
}

// Key returns the Redis key for a layout key.
func (s *RedisStore) Key(key string) string {
	return s.prefix + key
}

// Put stores data with an optional expiry.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.Key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Get loads the data stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return data, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
