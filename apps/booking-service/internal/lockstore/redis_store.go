package lockstore

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgredis "github.com/bennyworkz/ticketblitz/pkg/redis"
)

// deleteIfEqualsScript is a compare-and-delete: Redis has no native atomic
// "delete key if its value equals X", so lock release needs this tiny script
// to avoid a check-then-delete race with a concurrent re-lock after expiry.
const deleteIfEqualsScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

const deleteIfEqualsScriptName = "lockstore_delete_if_equals"

// RedisStore is the production Store, backed by Redis.
type RedisStore struct {
	client *pkgredis.Client
}

func NewRedisStore(ctx context.Context, client *pkgredis.Client) (*RedisStore, error) {
	if _, err := client.LoadScript(ctx, deleteIfEqualsScriptName, deleteIfEqualsScript); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) DeleteIfEquals(ctx context.Context, key, expected string) (bool, error) {
	res := s.client.EvalWithFallback(ctx, deleteIfEqualsScriptName, deleteIfEqualsScript, []string{key}, expected)
	deleted, err := res.Int64()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	return s.client.Decr(ctx, key).Result()
}

func (s *RedisStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Client().Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.client.TTL(ctx, key).Result()
}

var _ Store = (*RedisStore)(nil)
