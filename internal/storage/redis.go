package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "eventos:state:"

// RedisStore keeps one browser's client state in a Redis hash. The hash
// expires after ttl of inactivity; every write refreshes it.
type RedisStore struct {
	ctx    context.Context
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store for the given browser id
func NewRedisStore(ctx context.Context, client redis.Cmdable, browserID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		ctx:    ctx,
		client: client,
		key:    RedisKey(browserID),
		ttl:    ttl,
	}
}

// RedisKey returns the hash key holding a browser's state
func RedisKey(browserID string) string {
	return redisKeyPrefix + browserID
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	val, err := s.client.HGet(s.ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	return s.SetAll(map[string]string{key: value})
}

func (s *RedisStore) SetAll(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	// sorted so the command is deterministic
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(values)*2)
	for _, k := range keys {
		args = append(args, k, values[k])
	}

	if err := s.client.HSet(s.ctx, s.key, args...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.touch()
}

func (s *RedisStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(s.ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) touch() error {
	if s.ttl <= 0 {
		return nil
	}
	if err := s.client.Expire(s.ctx, s.key, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
