package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/carhire-backend/pkg/config"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// flakyBackend fails every call while down is set and otherwise delegates to memory.
type flakyBackend struct {
	*Memory
	down     bool
	sets     int
	prefixes []string
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.down {
		return nil, errors.New("connection refused")
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets++
	if f.down {
		return errors.New("connection refused")
	}
	return f.Memory.Set(ctx, key, value, ttl)
}

func (f *flakyBackend) DeletePrefix(ctx context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	if f.down {
		return errors.New("connection refused")
	}
	return f.Memory.DeletePrefix(ctx, prefix)
}

func newTestLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: buf})
}

func TestReadThroughPopulatesThenHits(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemory(), time.Hour, nil, nil)
	loads := 0
	load := func(context.Context) (cachedLocation, error) {
		loads++
		return cachedLocation{ID: "a", Name: "Airport"}, nil
	}

	first, err := ReadThrough(ctx, c, "locations", "loc:t:one:a", load)
	require.NoError(t, err)
	second, err := ReadThrough(ctx, c, "locations", "loc:t:one:a", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestReadThroughFailsOpenAndSkipsPopulate(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	backend := &flakyBackend{Memory: NewMemory(), down: true}
	c := New(backend, time.Hour, newTestLogger(buf), nil)

	value, err := ReadThrough(ctx, c, "pricing", "pricing:t:x", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 0, backend.sets, "populate must be skipped after a failed read")
	assert.Contains(t, buf.String(), "falling through to store")
}

func TestReadThroughDoesNotCacheLoadErrors(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	c := New(mem, time.Hour, nil, nil)
	boom := errors.New("not found")

	_, err := ReadThrough(ctx, c, "locations", "loc:t:one:missing", func(context.Context) (cachedLocation, error) {
		return cachedLocation{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mem.Len())
}

func TestReadThroughReloadsUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, "k", []byte("{not json"), time.Hour))
	c := New(mem, time.Hour, nil, nil)

	value, err := ReadThrough(ctx, c, "locations", "k", func(context.Context) (cachedLocation, error) {
		return cachedLocation{ID: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", value.ID)

	raw, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "fresh")
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *Cache
	value, err := ReadThrough(context.Background(), c, "locations", "k", func(context.Context) (string, error) {
		return "direct", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", value)
	c.Invalidate(context.Background(), "locations", "loc:")

	disabled := New(nil, 0, nil, nil)
	assert.Equal(t, DefaultTTL, disabled.TTL())
}

func TestInvalidateIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	c := New(mem, time.Hour, nil, nil)
	tenantA, tenantB := uuid.New(), uuid.New()

	for _, key := range []string{
		LocationKey(tenantA, "list"),
		PricingKey(tenantA, "resolve", "x"),
		LocationKey(tenantB, "list"),
	} {
		require.NoError(t, mem.Set(ctx, key, []byte(`"v"`), time.Hour))
	}

	c.Invalidate(ctx, "locations", LocationPrefix(tenantA), PricingPrefix(tenantA))

	_, err := mem.Get(ctx, LocationKey(tenantA, "list"))
	assert.ErrorIs(t, err, ErrMiss)
	_, err = mem.Get(ctx, PricingKey(tenantA, "resolve", "x"))
	assert.ErrorIs(t, err, ErrMiss)
	_, err = mem.Get(ctx, LocationKey(tenantB, "list"))
	assert.NoError(t, err)
}

func TestInvalidateSwallowsBackendErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	backend := &flakyBackend{Memory: NewMemory(), down: true}
	c := New(backend, time.Hour, newTestLogger(buf), nil)

	c.Invalidate(context.Background(), "locations", "loc:a:", "pricing:a:")

	assert.Equal(t, []string{"loc:a:", "pricing:a:"}, backend.prefixes, "every prefix is attempted")
	assert.Contains(t, buf.String(), "cache invalidation failed")
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }

	require.NoError(t, mem.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := mem.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = mem.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, mem.Len())
}

func TestMemoryEvictionKeepsRefreshedEntry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }

	require.NoError(t, mem.Set(ctx, "k", []byte("old"), time.Minute))
	now = now.Add(time.Minute)

	// a writer refreshes the key after a reader saw the expired entry
	require.NoError(t, mem.Set(ctx, "k", []byte("fresh"), time.Minute))
	mem.evictExpired("k", now)

	got, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)

	now = now.Add(time.Minute)
	mem.evictExpired("k", now)
	assert.Equal(t, 0, mem.Len())
}

type fakeRedisStore struct {
	data    map[string]string
	deleted []string
	getErr  error
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedisStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = string(value.([]byte))
	return nil
}

func (f *fakeRedisStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	f.deleted = append(f.deleted, prefix)
	var n int64
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRedisStore) Key(parts ...string) string {
	return "ch:" + strings.Join(parts, ":")
}

func TestRedisBackendNamespacesKeysAndMapsNil(t *testing.T) {
	ctx := context.Background()
	store := &fakeRedisStore{data: map[string]string{}}
	backend := NewRedisBackend(store)

	_, err := backend.Get(ctx, "loc:t:list")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, backend.Set(ctx, "loc:t:list", []byte("[]"), time.Hour))
	assert.Contains(t, store.data, "ch:loc:t:list")

	require.NoError(t, backend.DeletePrefix(ctx, "loc:t:"))
	assert.Equal(t, []string{"ch:loc:t:"}, store.deleted)
	assert.Empty(t, store.data)

	store.getErr = errors.New("i/o timeout")
	_, err = backend.Get(ctx, "loc:t:list")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
}

func TestBackendFromConfig(t *testing.T) {
	store := &fakeRedisStore{data: map[string]string{}}

	b, err := BackendFromConfig(config.CacheConfig{Driver: "redis"}, store)
	require.NoError(t, err)
	assert.IsType(t, &RedisBackend{}, b)

	_, err = BackendFromConfig(config.CacheConfig{Driver: "redis"}, nil)
	require.Error(t, err)

	b, err = BackendFromConfig(config.CacheConfig{Driver: "Memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = BackendFromConfig(config.CacheConfig{Driver: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, b)
}
