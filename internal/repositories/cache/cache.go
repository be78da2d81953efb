// Package cache keeps the last good snapshots read from the primary store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Cache stores JSON encoded snapshots by key.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCache is a process local Cache. Entries never expire unless TTL is set.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	TTL     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), TTL: ttl, now: time.Now}
}

// WithClock replaces the time source used for TTL checks.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if c.TTL > 0 && c.now().Sub(entry.storedAt) > c.TTL {
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{payload: payload, storedAt: c.now()}
	c.mu.Unlock()
	return nil
}
