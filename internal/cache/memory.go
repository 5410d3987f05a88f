package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process UsernameCache with per-entry expiry.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory) GetMany(_ context.Context, ids []string) (map[string]string, error) {
	now := m.now()
	found := make(map[string]string, len(ids))

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range ids {
		e, ok := m.items[id]
		if !ok || now.After(e.expiresAt) {
			continue
		}
		found[id] = e.value
	}
	return found, nil
}

func (m *Memory) SetMany(_ context.Context, names map[string]string) error {
	expiresAt := m.now().Add(m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	for id, name := range names {
		m.items[id] = entry{value: name, expiresAt: expiresAt}
	}
	return nil
}

// prune drops expired entries; callers hold the write lock.
func (m *Memory) prune() {
	now := m.now()
	for id, e := range m.items {
		if now.After(e.expiresAt) {
			delete(m.items, id)
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ UsernameCache = (*Memory)(nil)
