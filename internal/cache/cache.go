// Package cache stores rendered query responses for a short time.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a response stays cached.
const DefaultTTL = 60 * time.Second

// DefaultMaxEntries caps the in-process cache.
const DefaultMaxEntries = 4096

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// New builds the cache named by driver: "memory", "redis", or "none"/"" for no cache.
func New(driver, redisAddr string, redisDB int) (Cache, error) {
	switch driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(redisAddr, redisDB), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Cache holding at most maxEntries keys. Expired
// entries are dropped on read and swept from Set at most once per DefaultTTL
// or whenever the cache is full. A full cache with nothing expired evicts the
// entry closest to expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	nextSweep  time.Time
	now        func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	_, exists := m.entries[key]
	full := !exists && len(m.entries) >= m.maxEntries
	if full || !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(DefaultTTL)
		full = !exists && len(m.entries) >= m.maxEntries
	}
	if full {
		m.evictOldest()
	}

	m.entries[key] = memoryEntry{value: value, expires: now.Add(ttl)}
	return nil
}

func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) evictOldest() {
	var (
		oldest  string
		earlier time.Time
		found   bool
	)
	for k, e := range m.entries {
		if !found || e.expires.Before(earlier) {
			oldest, earlier, found = k, e.expires, true
		}
	}
	if found {
		delete(m.entries, oldest)
	}
}

func (m *Memory) Close() error { return nil }
