// Package cache is the range-aware response cache for stats queries.
package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/headcount-lab/headcount/internal/metrics"
)

// DefaultMaxEntries bounds each TTL store.
const DefaultMaxEntries = 1024

// Scope selects what an invalidation drops.
type Scope string

// ScopeAll drops every cached response.
const ScopeAll Scope = "all"

// Cache stores responses in one expirable LRU per distinct TTL.
// A key lives in at most one store; the last Set wins.
type Cache struct {
	mu         sync.RWMutex
	maxEntries int
	stores     map[time.Duration]*expirable.LRU[string, any]
}

// New creates a cache whose per-TTL stores hold at most maxEntries each.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		maxEntries: maxEntries,
		stores:     make(map[time.Duration]*expirable.LRU[string, any]),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, store := range c.stores {
		if v, ok := store.Get(key); ok {
			metrics.CacheRequests.WithLabelValues(kindOf(key), "hit").Inc()
			slog.Debug("[Cache] Hit", "key", key)
			return v, true
		}
	}

	metrics.CacheRequests.WithLabelValues(kindOf(key), "miss").Inc()
	slog.Debug("[Cache] Miss", "key", key)
	return nil, false
}

// Set stores value under key for ttl. A non-positive ttl is a no-op.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for d, store := range c.stores {
		if d != ttl {
			store.Remove(key)
		}
	}

	store, ok := c.stores[ttl]
	if !ok {
		store = expirable.NewLRU[string, any](c.maxEntries, nil, ttl)
		c.stores[ttl] = store
	}
	store.Add(key, value)
	slog.Debug("[Cache] Stored", "key", key, "ttl", ttl)
}

// InvalidateAll drops every cached response.
func (c *Cache) InvalidateAll() {
	c.Invalidate(ScopeAll)
}

// Invalidate drops the responses covered by scope. Only ScopeAll exists
// today; unknown scopes fall back to dropping everything.
func (c *Cache) Invalidate(scope Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scope != ScopeAll {
		slog.Debug("[Cache] Unknown invalidation scope, dropping everything", "scope", scope)
	}
	for _, store := range c.stores {
		store.Purge()
	}
	metrics.CacheInvalidations.WithLabelValues(string(scope)).Inc()
}

// Len reports the number of live entries across all stores.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, store := range c.stores {
		n += store.Len()
	}
	return n
}

// Ping round-trips a sentinel value, for health checks.
func (c *Cache) Ping() bool {
	const sentinelKey = "headcount:health:sentinel"
	c.Set(sentinelKey, "ok", 30*time.Second)
	v, ok := c.Get(sentinelKey)
	return ok && v == "ok"
}
