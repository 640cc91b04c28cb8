package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value     int
	expiresAt time.Time
}

// MemoryStore is a bounded in-process Store. Entries expire individually;
// the least recently used entry is dropped once size is reached.
type MemoryStore struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryStore{entries: entries, now: time.Now}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (int, bool, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return 0, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		m.entries.Remove(key)
		return 0, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value int, ttl time.Duration) error {
	if ttl <= 0 {
		m.entries.Remove(key)
		return nil
	}
	m.entries.Add(key, memoryEntry{value: value, expiresAt: m.now().Add(ttl)})
	return nil
}

// Len reports the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}
