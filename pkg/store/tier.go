// Package store persists barswitch state in two tiers: a fast local tier and
// a synchronized tier shared by every installation of the same account.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by a tier that refuses a write because its
// write budget is spent. The write is dropped, not queued.
var ErrQuotaExceeded = errors.New("store: write quota exceeded")

// Tier is a flat key/value store.
type Tier interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Watcher is implemented by tiers that can report outside changes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// MemoryTier is a Tier held in a map. It counts calls so tests can assert
// how often a tier was touched.
type MemoryTier struct {
	mu     sync.Mutex
	values map[string][]byte
	gets   int
	sets   int

	// SetErr, when set, fails every Set.
	SetErr error
	// GetErr, when set, fails every Get.
	GetErr error
}

// NewMemoryTier returns an empty MemoryTier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{values: make(map[string][]byte)}
}

func (m *MemoryTier) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryTier) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.sets++
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryTier) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Gets reports how many Get calls were made.
func (m *MemoryTier) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// Sets reports how many Set calls succeeded.
func (m *MemoryTier) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Has reports whether key holds a value.
func (m *MemoryTier) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}
