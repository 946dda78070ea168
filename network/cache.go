package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// defaultTTL applies to responses with neither max-age nor Expires.
const defaultTTL = 5 * time.Minute

type cacheEntry struct {
	res     *Resource
	stored  time.Time
	expires time.Time
}

// Cache keeps loaded resources keyed by URL so reopening a page does not
// refetch its stylesheets and scripts. When full, the entry stored first
// is evicted.
type Cache struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	limit   int
	entries map[string]cacheEntry
}

// NewCache creates a cache of at most limit entries, 256 when limit is not
// positive. A nil clock means the real one.
func NewCache(limit int, clock clockwork.Clock) *Cache {
	if limit <= 0 {
		limit = 256
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{clock: clock, limit: limit, entries: map[string]cacheEntry{}}
}

// Get returns the resource stored for url while it is fresh. Stale
// entries are dropped.
func (c *Cache) Get(url string) (*Resource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expires) {
		delete(c.entries, url)
		return nil, false
	}
	return e.res, true
}

// Set stores res with a lifetime taken from Cache-Control max-age, then
// Expires, then defaultTTL. no-store and no-cache responses are skipped.
func (c *Cache) Set(url string, res *Resource, headers http.Header) {
	now := c.clock.Now()
	lifetime, ok := freshness(headers, now)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[url]; !exists && len(c.entries) >= c.limit {
		c.evictLocked()
	}
	c.entries[url] = cacheEntry{res: res, stored: now, expires: now.Add(lifetime)}
}

// freshness reports how long a response may be reused, and false when it
// may not be stored at all.
func freshness(h http.Header, now time.Time) (time.Duration, bool) {
	maxAge := time.Duration(-1)
	for d := range strings.SplitSeq(h.Get("Cache-Control"), ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		switch {
		case d == "no-store", d == "no-cache":
			return 0, false
		case strings.HasPrefix(d, "max-age="):
			if secs, err := strconv.Atoi(d[len("max-age="):]); err == nil && secs >= 0 {
				maxAge = time.Duration(secs) * time.Second
			}
		}
	}
	if maxAge >= 0 {
		return maxAge, true
	}
	if t, err := http.ParseTime(h.Get("Expires")); err == nil {
		return t.Sub(now), true
	}
	return defaultTTL, true
}

func (c *Cache) evictLocked() {
	var oldest string
	for url, e := range c.entries {
		if oldest == "" || e.stored.Before(c.entries[oldest].stored) {
			oldest = url
		}
	}
	delete(c.entries, oldest)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len counts stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
