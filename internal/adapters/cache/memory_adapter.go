package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// MemoryAdapter is an in-process CacheProvider with lazy expiry.
// Expired entries are only treated as absent on read; nothing is swept and the
// map grows without bound for the lifetime of the process.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryAdapter creates an empty in-memory cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests to step past the TTL.
func (a *MemoryAdapter) WithClock(now func() time.Time) *MemoryAdapter {
	a.now = now
	return a
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get retrieves a live value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok || entry.expired(a.now()) {
		return nil, providers.ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores a value; the write time is the start of its TTL window
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[key] = memoryEntry{
		value:    value,
		storedAt: a.now(),
		ttl:      time.Duration(expirationSeconds) * time.Second,
	}
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
	return nil
}

// Exists checks if a live key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Get(ctx, key)
	return err == nil, nil
}

// Len returns the number of stored entries, expired ones included
func (a *MemoryAdapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
