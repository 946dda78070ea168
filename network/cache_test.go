package network

import (
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func cacheHeaders(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestCacheMaxAge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(10, clock)
	res := &Resource{URL: "https://example.com/a.css"}

	c.Set(res.URL, res, cacheHeaders("Cache-Control", "public, max-age=60"))
	got, ok := c.Get(res.URL)
	assert.True(t, ok)
	assert.Same(t, res, got)

	clock.Advance(61 * time.Second)
	_, ok = c.Get(res.URL)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheExpiresAndDefault(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(10, clock)

	expires := clock.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	c.Set("a", &Resource{}, cacheHeaders("Expires", expires))
	c.Set("b", &Resource{}, http.Header{})

	clock.Advance(11 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	clock.Advance(defaultTTL)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCacheNoStore(t *testing.T) {
	c := NewCache(10, clockwork.NewFakeClock())
	c.Set("a", &Resource{}, cacheHeaders("Cache-Control", "No-Store"))
	c.Set("b", &Resource{}, cacheHeaders("Cache-Control", "no-cache"))
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvictsOldest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(2, clock)

	c.Set("first", &Resource{}, http.Header{})
	clock.Advance(time.Second)
	c.Set("second", &Resource{}, http.Header{})
	clock.Advance(time.Second)
	c.Set("third", &Resource{}, http.Header{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok)
	_, ok = c.Get("third")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
