// Package cache provides small in-process key/value caches with a fixed TTL.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long cached parses and reports stay fresh.
const DefaultTTL = 5 * time.Minute

// Store is a string-keyed cache. Implementations are safe for concurrent use.
type Store[T any] interface {
	// Get returns the cached value and true, or the zero value and false if
	// the key is absent or expired.
	Get(key string) (T, bool)
	// Set stores v under key, replacing any previous value.
	Set(key string, v T)
}

// Observer is notified of lookups, e.g. to export hit ratios.
type Observer interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// Option configures a cache.
type Option func(*options)

type options struct {
	now func() time.Time
	obs Observer
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithObserver reports hits and misses to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.obs = obs }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// New returns a Store for the named backend: "memory" (or empty) for TTL,
// "gocache" for GoCache.
func New[T any](backend, name string, ttl time.Duration, opts ...Option) (Store[T], error) {
	switch backend {
	case "", "memory":
		return NewTTL[T](name, ttl, opts...), nil
	case "gocache":
		return NewGoCache[T](name, ttl, opts...), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// TTL is a map-backed Store. An entry expires once more than ttl has passed
// since it was set; expired entries are evicted on the next lookup of their
// key, never in the background.
type TTL[T any] struct {
	mu      sync.Mutex
	name    string
	ttl     time.Duration
	opts    options
	entries map[string]entry[T]
}

type entry[T any] struct {
	value    T
	cachedAt time.Time
}

// NewTTL creates a TTL cache. If ttl <= 0, it defaults to DefaultTTL.
func NewTTL[T any](name string, ttl time.Duration, opts ...Option) *TTL[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{
		name:    name,
		ttl:     ttl,
		opts:    buildOptions(opts),
		entries: make(map[string]entry[T]),
	}
}

// Get implements Store.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.opts.now().Sub(e.cachedAt) > c.ttl {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.observe(false)
		var zero T
		return zero, false
	}
	c.observe(true)
	return e.value, true
}

// Set implements Store.
func (c *TTL[T]) Set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{value: v, cachedAt: c.opts.now()}
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *TTL[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[T]) observe(hit bool) {
	if c.opts.obs == nil {
		return
	}
	if hit {
		c.opts.obs.CacheHit(c.name)
	} else {
		c.opts.obs.CacheMiss(c.name)
	}
}
