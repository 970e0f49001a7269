package metadata

import (
	"sort"
	"sync"
	"time"

	"github.com/tmdbcat/tmdbcat/internal/metadata/tmdb"
)

// Cache is an in-memory TTL cache for small upstream lookups that change
// rarely: genre lists, the language list, session account ids and IMDb
// cross-references. Catalog pages and details are not stored here.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	ttl      time.Duration
	maxItems int
	now      func() time.Time
}

type cacheItem struct {
	value     any
	expiresAt time.Time
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      12 * time.Hour,
		MaxItems: 2000,
	}
}

// NewCache creates a new cache with the given configuration. Expired items
// are dropped lazily and by Purge.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL == 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 2000
	}

	return &Cache{
		items:    make(map[string]cacheItem),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		now:      time.Now,
	}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores an item with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores an item with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge removes expired items and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeExpired()
}

func (c *Cache) purgeExpired() int {
	now := c.now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// evictOldest removes expired items, then the soonest-expiring 10% if still
// at capacity. Must be called with the lock held.
func (c *Cache) evictOldest() {
	c.purgeExpired()
	if len(c.items) < c.maxItems {
		return
	}

	toRemove := max(c.maxItems/10, 1)
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.items[keys[i]].expiresAt.Before(c.items[keys[j]].expiresAt)
	})
	for _, key := range keys[:toRemove] {
		delete(c.items, key)
	}
}

// GetGenres retrieves a cached genre list.
func (c *Cache) GetGenres(key string) ([]tmdb.Genre, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	genres, ok := val.([]tmdb.Genre)
	return genres, ok
}

// GetLanguages retrieves a cached language list.
func (c *Cache) GetLanguages(key string) ([]tmdb.Language, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	languages, ok := val.([]tmdb.Language)
	return languages, ok
}

// GetInt retrieves a cached integer such as an account id.
func (c *Cache) GetInt(key string) (int, bool) {
	val, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := val.(int)
	return n, ok
}
