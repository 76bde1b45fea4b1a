// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes pipeline responses by normalized query key with a
// TTL. Lookups and writes never fail: a broken backend degrades to
// "always miss" and the pipeline stays correct, just slower.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is the entry lifetime when the caller does not set one.
const DefaultTTL = 24 * time.Hour

// Store is a TTL key-value store. Get reports a miss for absent or
// expired keys. Neither method returns an error; backends absorb their
// own failures.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now is the clock, replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), Now: time.Now}
}

// Get returns the value for key if present and unexpired. Expired entries
// are deleted on access.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if m.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key for ttl (DefaultTTL when non-positive).
// Concurrent writers race last-write-wins, which is tolerable because
// values are idempotent for the same key.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.Now().Add(ttl)}
}
