package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/angelmondragon/carhire-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const DefaultTTL = time.Hour

// Cache is a fail-open read cache. Backend errors never fail a read; they are
// logged, counted, and the value is loaded from the store instead.
type Cache struct {
	backend Backend
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
}

// New wraps backend. A nil backend disables caching.
func New(backend Backend, ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{backend: backend, ttl: ttl, logg: logg, metrics: m}
}

func (c *Cache) enabled() bool {
	return c != nil && c.backend != nil
}

// ReadThrough returns the cached value at key or calls load and caches its
// result. When the backend read fails the loaded value is not written back,
// so a flapping backend is not hammered with writes.
func ReadThrough[T any](ctx context.Context, c *Cache, name, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return load(ctx)
	}

	populate := true
	raw, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			c.metrics.IncHit(name)
			return cached, nil
		}
		c.warn(ctx, name, key, "cache entry undecodable, reloading", decodeErr)
	case errors.Is(err, ErrMiss):
		c.metrics.IncMiss(name)
	default:
		populate = false
		c.metrics.IncError(name, "get")
		c.warn(ctx, name, key, "cache read failed, falling through to store", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if !populate {
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, name, key, "cache encode failed", err)
		return value, nil
	}
	if err := c.backend.Set(ctx, key, encoded, c.ttl); err != nil {
		c.metrics.IncError(name, "set")
		c.warn(ctx, name, key, "cache write failed", err)
	}
	return value, nil
}

// Invalidate drops every entry under the given prefixes. Failures are logged
// and swallowed; stale entries then expire with the TTL.
func (c *Cache) Invalidate(ctx context.Context, name string, prefixes ...string) {
	if !c.enabled() {
		return
	}
	var errs error
	for _, prefix := range prefixes {
		if err := c.backend.DeletePrefix(ctx, prefix); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	c.metrics.IncInvalidation(name)
	if errs != nil {
		c.metrics.IncError(name, "invalidate")
		if c.logg != nil {
			c.logg.Error(c.logg.WithFields(ctx, map[string]any{
				"cache":    name,
				"prefixes": prefixes,
			}), "cache invalidation failed", errs)
		}
	}
}

// TTL reports the entry lifetime applied on populate.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

func (c *Cache) warn(ctx context.Context, name, key, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"cache": name,
		"key":   key,
		"error": err.Error(),
	})
	c.logg.Warn(ctx, msg)
}
