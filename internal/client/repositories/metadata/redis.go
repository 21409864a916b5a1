package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces keys so several installs can share a server.
const DefaultRedisPrefix = "venuebook:session:"

const compareAndDeleteScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var compareAndDeleteLua = redis.NewScript(compareAndDeleteScript)

// RedisRepository stores entries as plain string keys. It is meant for
// kiosk-style deployments where several client processes share one
// session.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) key(k string) string {
	return r.prefix + k
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	n, err := compareAndDeleteLua.Run(ctx, r.rdb, []string{r.key(key)}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-delete metadata[%s]: %w", key, err)
	}
	return n == 1, nil
}

func (r *RedisRepository) SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error) {
	if err := r.rdb.SetNX(ctx, r.key(key), value, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return r.Get(ctx, key)
}
