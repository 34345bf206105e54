// Package cache provides the in-memory result cache used by the retrieval
// engine. Entries are evicted oldest-inserted-first when the cache is full;
// reads do not refresh an entry's position, so this is deliberately simpler
// than a true LRU.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxEntries bounds the number of cached results.
	DefaultMaxEntries = 1000
	// DefaultMaxAge is the absolute age ceiling enforced by Sweep,
	// independent of the per-entry TTL passed to Set.
	DefaultMaxAge = time.Hour
)

type entry struct {
	value    interface{}
	storedAt time.Time
	ttl      time.Duration
}

// Cache is a bounded, TTL-aware in-memory cache safe for concurrent use.
// Entries older than their TTL are misses on Get but stay in the map until
// Sweep removes everything past the absolute age ceiling.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	maxAge     time.Duration
	entries    map[string]*entry
	order      []string // insertion order, oldest first
}

// New creates a cache with the given capacity and absolute age ceiling.
// Non-positive arguments fall back to the defaults.
func New(maxEntries int, maxAge time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		entries:    make(map[string]*entry, maxEntries),
	}
}

// Get returns the cached value for key. Entries older than their TTL are
// reported as a miss but not removed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > e.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, evicting the oldest-inserted
// entry when the cache is at capacity. Re-setting an existing key overwrites
// its value and timestamp but keeps its position in the eviction order.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.maxAge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = time.Now()
		e.ttl = ttl
		return
	}

	if len(c.entries) >= c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &entry{value: value, storedAt: time.Now(), ttl: ttl}
	c.order = append(c.order, key)
}

// Delete removes key from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Len returns the current number of entries, expired ones included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes all entries older than the absolute age ceiling and returns
// how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for key, e := range c.entries {
		if time.Since(e.storedAt) > c.maxAge {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.remove(key)
	}
	return len(expired)
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// remove deletes key from entries and the insertion order. Callers hold the lock.
func (c *Cache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SearchKey derives the deterministic cache key for a vector search
func SearchKey(documentRID uuid.UUID, query string, k int) string {
	return hashKey("search", fmt.Sprintf("%s:%s:%d", documentRID, query, k))
}

// SummaryKey derives the deterministic cache key for a document summary
func SummaryKey(documentRID uuid.UUID) string {
	return hashKey("summary", documentRID.String())
}

func hashKey(prefix string, data string) string {
	sum := md5.Sum([]byte(data))
	return prefix + ":" + hex.EncodeToString(sum[:])
}
