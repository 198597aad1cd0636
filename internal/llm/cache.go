package llm

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// DefaultCacheMaxEntries bounds the cache when MaxEntries is unset
const DefaultCacheMaxEntries = 500

// CacheConfig configures the response cache
type CacheConfig struct {
	Enabled    bool `json:"enabled"`
	TTLSeconds int  `json:"ttl_seconds" validate:"gte=0"`
	MaxEntries int  `json:"max_entries" validate:"gte=0"`
}

// DefaultCacheConfig returns a one-hour, 500-entry cache
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:    true,
		TTLSeconds: 3600,
		MaxEntries: DefaultCacheMaxEntries,
	}
}

// Cache is a bounded, TTL-aware response cache keyed by CacheKey.
// Eviction removes the oldest insertion first. A nil *Cache is a valid
// disabled cache. One mutex guards the map and the insertion list.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List
	now        func() time.Time
}

type cacheEntry struct {
	key       string
	response  *Response
	timestamp time.Time
}

// NewCache creates a cache, or returns nil when caching is disabled.
// A TTL of zero keeps entries until they are evicted.
func NewCache(cfg CacheConfig) *Cache {
	if !cfg.Enabled {
		return nil
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &Cache{
		ttl:        time.Duration(cfg.TTLSeconds) * time.Second,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// CacheKey derives the deterministic cache key for a request
func CacheKey(model string, temperature float64, systemPrompt, userPrompt string) string {
	h := sha256.New()
	for _, part := range []string{
		model,
		strconv.FormatFloat(temperature, 'f', -1, 64),
		systemPrompt,
		userPrompt,
	} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached response. Expired entries are removed
// and reported as absent.
func (c *Cache) Get(key string) (*Response, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.timestamp) >= c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}

	return entry.response.clone(), true
}

// Set stores a copy of the response. Re-setting a key counts as a new
// insertion. When full, the oldest insertion is evicted.
func (c *Cache) Set(key string, resp *Response) {
	if c == nil || resp == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}

	for c.order.Len() >= c.maxEntries {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	stored := resp.clone()
	stored.Cached = false
	c.entries[key] = c.order.PushBack(&cacheEntry{
		key:       key,
		response:  stored,
		timestamp: c.now(),
	})
}

// Len returns the number of stored entries, including expired ones not yet read
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes every entry
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}
