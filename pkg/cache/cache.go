package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value store with per-entry expiry.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error
}

// Option configures either backend.
type Option func(*options)

type options struct {
	prefix     string
	ttl        time.Duration
	maxEntries int
}

func newOptions(opts []Option) options {
	o := options{ttl: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTTL sets the expiry used when Set receives a zero TTL. Default: 1h.
func WithTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

// WithMaxEntries bounds the in-memory cache; the least recently used entry
// is evicted when full. Zero means unbounded. Ignored by Redis.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}". Ignored by Memory.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// resolveTTL maps the Set TTL convention onto an absolute expiry.
// The zero time means no expiry.
func resolveTTL(ttl, def time.Duration) time.Time {
	if ttl == 0 {
		ttl = def
	}
	if ttl < 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// Loader reads through a cache, calling a load function on misses.
// Concurrent misses for one key share a single load.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

// NewLoader wraps c.
func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Cache returns the wrapped cache.
func (l *Loader[V]) Cache() Cache[V] { return l.cache }

// Get returns the cached value for key or loads it. The load function also
// reports whether its result may be cached and for how long. Loaded values
// are returned even when storing them fails.
func (l *Loader[V]) Get(ctx context.Context, key string, load func(ctx context.Context) (V, time.Duration, bool, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, ttl, ok, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			_ = l.cache.Set(ctx, key, v, ttl)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
