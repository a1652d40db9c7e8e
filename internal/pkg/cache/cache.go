// Package cache holds rendered HTTP responses in memory with a per-entry TTL.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Entry is a captured response.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

type Config struct {
	// MaxBytes bounds the total size of cached bodies.
	MaxBytes int64
	// MaxEntries sizes the admission counters; roughly the expected key count.
	MaxEntries int64
}

func DefaultConfig() Config {
	return Config{
		MaxBytes:   64 << 20,
		MaxEntries: 10_000,
	}
}

type Cache struct {
	store *ristretto.Cache[string, Entry]
}

func New(cfg Config) (*Cache, error) {
	if cfg.MaxBytes <= 0 || cfg.MaxEntries <= 0 {
		cfg = DefaultConfig()
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, Entry]{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxBytes,
		BufferItems: 64,
		Cost: func(e Entry) int64 {
			return int64(len(e.Body) + len(e.ContentType))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	return &Cache{store: store}, nil
}

func (c *Cache) Get(key string) (Entry, bool) {
	return c.store.Get(key)
}

// Set stores e and waits until it is visible to Get. Admission may still
// reject it under memory pressure.
func (c *Cache) Set(key string, e Entry, ttl time.Duration) bool {
	ok := c.store.SetWithTTL(key, e, 0, ttl)
	c.store.Wait()
	return ok
}

func (c *Cache) Delete(key string) {
	c.store.Del(key)
}

// Clear drops every entry, e.g. after new data was ingested.
func (c *Cache) Clear() {
	c.store.Clear()
}

func (c *Cache) Close() {
	c.store.Close()
}
