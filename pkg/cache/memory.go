package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds a MemoryCache created with size <= 0.
const DefaultMemoryEntries = 256

// MemoryCache keeps the most recently used entries in process memory.
// It is safe for concurrent use.
type MemoryCache struct {
	lru *lru.Cache[string, entry]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c}, nil
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired() {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.Data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.lru.Add(key, newEntry(append([]byte(nil), data...), ttl))
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
