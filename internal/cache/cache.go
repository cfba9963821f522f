// Package cache memoises derived views per ticker for the life of the
// process.
package cache

import (
	"strings"
	"sync"
)

// Key identifies one memoised result
type Key struct {
	Method string
	Ticker string
	Params string
}

func (k Key) entry() string {
	return k.Method + "|" + k.Params
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Cache is a mutex-guarded map of results bucketed by ticker. Entries never
// expire; use Invalidate or Purge to drop them. Values are shared between
// callers and must not be mutated.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[string]interface{}
}

// New creates an empty cache
func New() *Cache {
	return &Cache{entries: make(map[string]map[string]interface{})}
}

// Get returns the value stored under key
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bucket, ok := c.entries[NormalizeTicker(key.Ticker)]
	if !ok {
		return nil, false
	}
	v, ok := bucket[key.entry()]
	return v, ok
}

// Set stores value under key, replacing any previous value
func (c *Cache) Set(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := NormalizeTicker(key.Ticker)
	bucket, ok := c.entries[ticker]
	if !ok {
		bucket = make(map[string]interface{})
		c.entries[ticker] = bucket
	}
	bucket[key.entry()] = value
}

// Invalidate drops every entry for ticker and returns how many were removed
func (c *Cache) Invalidate(ticker string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker = NormalizeTicker(ticker)
	n := len(c.entries[ticker])
	delete(c.entries, ticker)
	return n
}

// Purge drops every entry and returns how many were removed
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	c.entries = make(map[string]map[string]interface{})
	return n
}

// Len returns the number of stored entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}
