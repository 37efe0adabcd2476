// Package viewcache holds rendered page markup for one installed project.
//
// A cache is created together with the project it serves and is dropped
// with it. Nothing invalidates individual entries; a rebuild installs a
// fresh cache.
package viewcache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultMaxEntries bounds the number of cached views.
	DefaultMaxEntries = 1000

	// DefaultTTL is how long a cached view stays valid.
	DefaultTTL = 15 * time.Minute
)

// Options configures a Cache. Zero values take the defaults.
type Options struct {
	MaxEntries int
	TTL        time.Duration
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Cache is a bounded, time-expiring store of rendered markup keyed by
// component and page cache key. Safe for concurrent use.
type Cache struct {
	lru    *expirable.LRU[string, string]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Cache.
func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Cache{
		lru: expirable.NewLRU[string, string](opts.MaxEntries, nil, opts.TTL),
	}
}

// Key joins a component reference and a page cache key.
func Key(component, pageKey string) string {
	return component + ":" + pageKey
}

// Get returns cached markup. A nil cache always misses.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	html, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return html, ok
}

// Set stores markup under key. A nil cache ignores the call.
func (c *Cache) Set(key, html string) {
	if c == nil {
		return
	}
	c.lru.Add(key, html)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Stats returns hit and miss counters and the current size.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.lru.Len(),
	}
}
