// ABOUTME: Tests for the TTL cache store
// ABOUTME: Covers expiry with a fake clock, prefix invalidation, and full clears
package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGetMissingKey(t *testing.T) {
	s := New(0)

	if _, ok := s.Get("crm:contacts:all"); ok {
		t.Error("expected miss for key that was never set")
	}
}

func TestSetAndGet(t *testing.T) {
	s := New(0)
	payload := json.RawMessage(`[{"id":"C1"}]`)

	s.Set("crm:contacts:all", payload)

	got, ok := s.Get("crm:contacts:all")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("expected %s, got %s", payload, got)
	}
}

func TestExpiryEvictsEntry(t *testing.T) {
	s := New(60 * time.Second)

	now := time.Now()
	s.SetClock(func() time.Time { return now })
	s.Set("marketing:leads:hot", json.RawMessage(`[]`))

	// Still fresh just inside the TTL
	now = now.Add(59 * time.Second)
	if _, ok := s.Get("marketing:leads:hot"); !ok {
		t.Error("expected hit inside TTL window")
	}

	// Stale past the TTL, and evicted as a side effect
	now = now.Add(2 * time.Second)
	if _, ok := s.Get("marketing:leads:hot"); ok {
		t.Error("expected miss past TTL window")
	}
	if s.Len() != 0 {
		t.Errorf("expected stale entry to be evicted, have %d entries", s.Len())
	}
}

func TestSetRefreshesTimestamp(t *testing.T) {
	s := New(60 * time.Second)

	now := time.Now()
	s.SetClock(func() time.Time { return now })
	s.Set("crm:deals:all", json.RawMessage(`[]`))

	now = now.Add(45 * time.Second)
	s.Set("crm:deals:all", json.RawMessage(`[]`))

	now = now.Add(45 * time.Second)
	if _, ok := s.Get("crm:deals:all"); !ok {
		t.Error("expected hit, second Set should have reset the timestamp")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	s := New(0)
	s.Set("crm:contacts:all", json.RawMessage(`[]`))
	s.Set("crm:contacts:status=lead", json.RawMessage(`[]`))
	s.Set("crm:stats", json.RawMessage(`{}`))
	s.Set("marketing:leads:all", json.RawMessage(`[]`))

	s.InvalidatePrefix("crm:contacts")

	if _, ok := s.Get("crm:contacts:all"); ok {
		t.Error("crm:contacts:all should be gone")
	}
	if _, ok := s.Get("crm:contacts:status=lead"); ok {
		t.Error("crm:contacts:status=lead should be gone")
	}
	if _, ok := s.Get("crm:stats"); !ok {
		t.Error("crm:stats should survive a contacts invalidation")
	}
	if _, ok := s.Get("marketing:leads:all"); !ok {
		t.Error("other modules' partitions should survive")
	}
}

func TestInvalidateClearsEverything(t *testing.T) {
	s := New(0)
	s.Set("crm:contacts:all", json.RawMessage(`[]`))
	s.Set("social:posts:all", json.RawMessage(`[]`))

	s.Invalidate()

	if s.Len() != 0 {
		t.Errorf("expected empty store, have %d entries", s.Len())
	}
}
