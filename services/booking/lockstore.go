package booking

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// LockStore is the minimal key-value contract the slot locks need. Every
// mutation is atomic on the server.
type LockStore interface {
	// SetNX writes value under key with ttl only when key is absent.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// DeleteIfValue removes key only when it currently holds value.
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
	// ExpireIfValue resets key's ttl only when it currently holds value.
	ExpireIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// ExistsMany reports, per key, whether a live entry exists.
	ExistsMany(ctx context.Context, keys []string) ([]bool, error)
}

var (
	deleteIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

	expireIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

// RedisLockStore implements LockStore on a go-redis client. Transport retries
// and backoff come from the client's options.
type RedisLockStore struct {
	client redis.UniversalClient
}

func NewRedisLockStore(client redis.UniversalClient) *RedisLockStore {
	return &RedisLockStore{client: client}
}

func (s *RedisLockStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisLockStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisLockStore) DeleteIfValue(ctx context.Context, key, value string) (bool, error) {
	n, err := deleteIfValueScript.Run(ctx, s.client, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisLockStore) ExpireIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	n, err := expireIfValueScript.Run(ctx, s.client, []string{key}, value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ExistsMany reads all keys in one MGET round trip.
func (s *RedisLockStore) ExistsMany(ctx context.Context, keys []string) ([]bool, error) {
	out := make([]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		out[i] = v != nil
	}
	return out, nil
}

func (s *RedisLockStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
