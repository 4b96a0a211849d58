package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// TTL constants for HTTP response caching.
const (
	TTLCurrentSeason = 1 * time.Hour  // Ladder for a season still in progress
	TTLHistorical    = 24 * time.Hour // Ladder for a finished season
	TTLLeaders       = 30 * time.Minute
)

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time // zero = never
	seq       uint64
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a thread-safe in-memory cache. It implements Store (no expiry)
// and also serves as the HTTP response cache (TTL + ETag).
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	enabled    bool
	maxEntries int
	seq        uint64
}

// NewMemory creates a memory cache. Pass enabled=false to create a no-op cache.
// maxEntries <= 0 means unbounded; otherwise the oldest insert is evicted once
// the limit is reached.
func NewMemory(enabled bool, maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		enabled:    enabled,
		maxEntries: maxEntries,
	}
}

// Get implements Store.
func (c *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	data, _, ok := c.Lookup(key.String())
	return data, ok, nil
}

// Put implements Store. Entries written through Put never expire.
func (c *Memory) Put(_ context.Context, key Key, data []byte) error {
	c.Set(key.String(), data, 0)
	return nil
}

// Lookup retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Memory) Lookup(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || e.expired(time.Now()) {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL (0 = never expire) and returns its ETag.
func (c *Memory) Set(key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.seq++
	e := entry{data: stored, etag: etag, seq: c.seq}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return etag
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Memory) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if !e.expired(now) {
			active++
		}
	}
	return map[string]interface{}{
		"enabled":      c.enabled,
		"max_entries":  c.maxEntries,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// Sweep removes expired entries.
func (c *Memory) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

// SweepEvery runs Sweep on an interval until ctx is cancelled.
// Intended to be called with `go`.
func (c *Memory) SweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// evictLocked drops expired entries, then the oldest insert if still full.
func (c *Memory) evictLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey string
	var oldestSeq uint64
	first := true
	for key, e := range c.entries {
		if first || e.seq < oldestSeq {
			oldestKey, oldestSeq, first = key, e.seq, false
		}
	}
	delete(c.entries, oldestKey)
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	return ifNoneMatch == etag
}
