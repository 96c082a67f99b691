package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultTTL is the validity window applied when none is configured.
const DefaultTTL = time.Hour

// Stats summarises the current cache contents for the introspection endpoint.
// Expired-but-unvisited entries still count; expiry is only discovered on Get.
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	TTLSeconds   int            `json:"ttl_seconds"`
	Categories   map[string]int `json:"categories"`
}

type entry struct {
	payload  json.RawMessage
	storedAt time.Time
}

// Memory is the in-process TTL response cache sitting in front of the remote
// data source. It lives from process start to process stop and is shared by
// all in-flight requests; every operation is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption customises a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source, used by tests to step through expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory builds an empty cache whose entries expire ttl after being stored.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the payload stored under key, or absent. An entry whose TTL has
// elapsed is deleted on the spot and reported absent; the check-then-delete is
// atomic so a concurrent Get never observes the stale payload.
func (m *Memory) Get(key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	if m.now().Sub(e.storedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}

	return e.payload, true
}

// Set unconditionally overwrites any existing entry for key, restarting its
// TTL. The payload is copied so later caller mutations cannot leak in.
func (m *Memory) Set(key string, payload json.RawMessage) {
	cpy := make(json.RawMessage, len(payload))
	copy(cpy, payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{payload: cpy, storedAt: m.now()}
}

// Clear removes every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]entry)
}

// Stats classifies every currently stored key by category. It deliberately
// performs no expiry checks so introspection never mutates the cache.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := map[string]int{
		CategoryList:       0,
		CategoryDetail:     0,
		CategoryTypeList:   0,
		CategoryTypeDetail: 0,
		CategoryOther:      0,
	}
	for key := range m.entries {
		categories[Category(key)]++
	}

	return Stats{
		TotalEntries: len(m.entries),
		TTLSeconds:   int(m.ttl / time.Second),
		Categories:   categories,
	}
}
