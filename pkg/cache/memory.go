package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache là implementation in-process của Cache
// Dùng khi Redis không khả dụng ở môi trường dev và trong unit test
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// WithClock override nguồn thời gian (test TTL)
func (m *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	m.now = now
	return m
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || m.expired(item) {
		return false, nil
	}
	if err := json.Unmarshal(item.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	item := memoryItem{raw: raw}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || m.expired(item) {
		return -2 * time.Second, nil
	}
	if item.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return item.expiresAt.Sub(m.now()), nil
}

func (m *MemoryCache) Ping(context.Context) error {
	return nil
}

func (m *MemoryCache) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)
}
