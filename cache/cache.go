// ABOUTME: Process-wide TTL cache for fetched collection payloads
// ABOUTME: Keyed by collection name plus serialized filter, pruned lazily on read
package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cached partition stays fresh.
const DefaultTTL = 60 * time.Second

type entry struct {
	value    json.RawMessage
	storedAt time.Time
}

// Store is an in-memory key/value cache with a fixed time-to-live. It is
// shared by every module instance and lives for the whole process; it is
// never persisted. Stale entries are evicted as a side effect of Get.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Store with the given TTL. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Tests use this to control TTL expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Get returns the cached value for key, or false if the key is absent or
// older than the TTL. An expired entry is removed before returning.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.storedAt) > s.ttl {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with a fresh timestamp.
func (s *Store) Set(key string, value json.RawMessage) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, storedAt: s.now()}
	s.mu.Unlock()
}

// Invalidate clears every entry.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix. Mutations
// use this to drop exactly the partitions they could have affected.
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of live entries, counting entries that have expired
// but not yet been pruned.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
