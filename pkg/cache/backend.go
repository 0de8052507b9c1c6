package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/carhire-backend/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Backend is the storage behind Cache. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisStore is the subset of pkg/redis.Client used by RedisBackend.
type RedisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	Key(parts ...string) string
}

// RedisBackend stores entries under the redis client's key namespace.
type RedisBackend struct {
	store RedisStore
}

func NewRedisBackend(store RedisStore) *RedisBackend {
	return &RedisBackend{store: store}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.store.Get(ctx, r.store.Key(key))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return []byte(val), nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.store.Set(ctx, r.store.Key(key), value, ttl)
}

func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := r.store.DeletePrefix(ctx, r.store.Key(prefix))
	return err
}

// BackendFromConfig picks the backend named by cfg. A nil Backend with a nil
// error means caching is disabled.
func BackendFromConfig(cfg config.CacheConfig, store RedisStore) (Backend, error) {
	switch cfg.Backend() {
	case config.CacheDriverRedis:
		if store == nil {
			return nil, fmt.Errorf("cache driver %q requires a redis client", cfg.Driver)
		}
		return NewRedisBackend(store), nil
	case config.CacheDriverMemory:
		return NewMemory(), nil
	case config.CacheDriverNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
