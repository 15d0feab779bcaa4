package render

import (
	"strings"
	"sync"
	"time"
)

// PageCache holds rendered page images keyed by {docId}_{pageNumber}. It is
// capacity-bounded (oldest-inserted evicted first) and time-bounded
// (entries past the TTL are misses). Serving one set of bytes per key also
// keeps concurrent requests for the same page from observing two different
// renders.
type PageCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]cacheEntry
	order    []string // insertion order, oldest first
}

type cacheEntry struct {
	data     []byte
	inserted time.Time
}

func NewPageCache(capacity int, ttl time.Duration) *PageCache {
	return &PageCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  map[string]cacheEntry{},
	}
}

func (c *PageCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.inserted) > c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return e.data, true
}

func (c *PageCache) Put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.removeLocked(key)
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}
	c.entries[key] = cacheEntry{data: data, inserted: time.Now()}
	c.order = append(c.order, key)
}

// DeleteDoc drops every cached page belonging to docID.
func (c *PageCache) DeleteDoc(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := docID + "_"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key)
		}
	}
}

func (c *PageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PageCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
