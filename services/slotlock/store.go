package slotlock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// LockStore abstracts the shared TTL-capable store holding slot locks.
type LockStore interface {
	// SetNX stores value under key only when absent; reports whether it won.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// SetEx stores value under key with a TTL, overwriting.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Del removes the key; removing an absent key is not an error.
	Del(ctx context.Context, key string) error
	// Keys lists keys matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// RedisLockStore implements LockStore over go-redis.
type RedisLockStore struct {
	Client *redis.Client
}

func (s *RedisLockStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisLockStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisLockStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisLockStore) Del(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *RedisLockStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.Client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
