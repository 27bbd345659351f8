package cache

import (
	"context"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/clock"
	"sync"
	"time"
)

type memoryEntry struct {
	coords    *domain.Coordinates
	expiresAt time.Time
}

// MemoryLocationCache is an in-process ports.LocationCache.
// Expired entries are dropped when read; Sweep removes the rest.
type MemoryLocationCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   clock.Clock
}

func NewMemoryLocationCache(c clock.Clock) *MemoryLocationCache {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &MemoryLocationCache{
		entries: make(map[string]memoryEntry),
		clock:   c,
	}
}

func (m *MemoryLocationCache) Get(_ context.Context, address string) (*domain.Coordinates, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[address]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := m.entries[address]; ok && !m.clock.Now().Before(cur.expiresAt) {
			delete(m.entries, address)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return copyCoords(e.coords), true, nil
}

func (m *MemoryLocationCache) Set(_ context.Context, address string, coords *domain.Coordinates, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[address] = memoryEntry{
		coords:    copyCoords(coords),
		expiresAt: m.clock.Now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (m *MemoryLocationCache) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryLocationCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryLocationCache) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func copyCoords(c *domain.Coordinates) *domain.Coordinates {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
