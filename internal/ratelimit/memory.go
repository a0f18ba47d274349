// internal/ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// defaultMaxEntries bounds the counter map so a flood of distinct caller
// keys cannot grow it without limit.
const defaultMaxEntries = 10000

type windowEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterStore is an in-process fixed-window counter store. Expired
// windows are dropped lazily on access and in bulk when the map hits its
// capacity bound.
type MemoryCounterStore struct {
	mu         sync.Mutex
	entries    map[string]*windowEntry
	maxEntries int
	now        func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		entries:    make(map[string]*windowEntry),
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
}

func (s *MemoryCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	entry, exists := s.entries[key]
	if !exists || !entry.expiresAt.After(now) {
		if len(s.entries) >= s.maxEntries {
			s.purgeExpiredLocked(now)
		}
		entry = &windowEntry{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}

	entry.count++
	return entry.count, entry.expiresAt.Sub(now), nil
}

func (s *MemoryCounterStore) purgeExpiredLocked(now time.Time) {
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
	// Still full of live windows: drop the soonest-expiring ones.
	for len(s.entries) >= s.maxEntries {
		var oldestKey string
		var oldestExpiry time.Time
		for key, entry := range s.entries {
			if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
				oldestKey = key
				oldestExpiry = entry.expiresAt
			}
		}
		delete(s.entries, oldestKey)
	}
}
