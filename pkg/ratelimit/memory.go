package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	requests int
	last     time.Time
	interval time.Duration
}

// MemoryStore keeps counters in process memory. Counters idle for longer
// than their window are dropped periodically.
type MemoryStore struct {
	mu        sync.Mutex
	counters  map[string]map[string]*counter
	lastPrune time.Time
	longest   time.Duration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]map[string]*counter)}
}

// Hit implements Store.
func (m *MemoryStore) Hit(_ context.Context, w Window, key string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w.Interval > m.longest {
		m.longest = w.Interval
	}
	if now.Sub(m.lastPrune) > m.longest {
		m.pruneLocked(now)
	}

	byKey, ok := m.counters[w.Name]
	if !ok {
		byKey = make(map[string]*counter)
		m.counters[w.Name] = byKey
	}

	c, exists := byKey[key]
	if !exists {
		c = &counter{}
	}
	requests, last, allowed := Allow(w, c.requests, c.last, now, exists)
	c.requests, c.last, c.interval = requests, last, w.Interval
	byKey[key] = c
	return allowed, nil
}

// Len returns the number of live counters across all windows.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, byKey := range m.counters {
		n += len(byKey)
	}
	return n
}

// Prune drops counters whose window has elapsed at now.
func (m *MemoryStore) Prune(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(now)
}

func (m *MemoryStore) pruneLocked(now time.Time) {
	for _, byKey := range m.counters {
		for key, c := range byKey {
			if now.Sub(c.last) >= c.interval {
				delete(byKey, key)
			}
		}
	}
	m.lastPrune = now
}
