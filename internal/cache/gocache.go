package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// GoCache is a Store backed by patrickmn/go-cache. Unlike TTL it purges
// expired entries in the background (every 2*ttl) and always uses the wall
// clock, so WithClock has no effect on it.
type GoCache[T any] struct {
	name string
	c    *gocache.Cache
	obs  Observer
}

// NewGoCache creates a go-cache backed Store. If ttl <= 0, it defaults to
// DefaultTTL.
func NewGoCache[T any](name string, ttl time.Duration, opts ...Option) *GoCache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := buildOptions(opts)
	return &GoCache[T]{
		name: name,
		c:    gocache.New(ttl, ttl*2),
		obs:  o.obs,
	}
}

// Get implements Store.
func (g *GoCache[T]) Get(key string) (T, bool) {
	if v, found := g.c.Get(key); found {
		if typed, ok := v.(T); ok {
			g.observe(true)
			return typed, true
		}
	}
	g.observe(false)
	var zero T
	return zero, false
}

// Set implements Store.
func (g *GoCache[T]) Set(key string, v T) {
	g.c.Set(key, v, gocache.DefaultExpiration)
}

// Flush removes all entries.
func (g *GoCache[T]) Flush() {
	g.c.Flush()
}

func (g *GoCache[T]) observe(hit bool) {
	if g.obs == nil {
		return
	}
	if hit {
		g.obs.CacheHit(g.name)
	} else {
		g.obs.CacheMiss(g.name)
	}
}
