package cache

import (
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// memoryMaxEntries bounds the in-process backend so a long-running caller
// cannot grow it without limit.
const memoryMaxEntries = 10_000

// memoryStore is the in-process backend, built on otter with per-entry TTL.
// otter serializes concurrent access and evicts expired entries itself, so
// a stale entry is never observable through Get.
type memoryStore struct {
	ttl time.Duration

	mu    sync.RWMutex
	cache *otter.Cache[string, []byte]
}

// NewMemory creates the in-process backend with the given entry TTL.
func NewMemory(ttl time.Duration) Store {
	return &memoryStore{
		ttl:   ttl,
		cache: newOtter(ttl),
	}
}

func newOtter(ttl time.Duration) *otter.Cache[string, []byte] {
	return otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      memoryMaxEntries,
		ExpiryCalculator: otter.ExpiryCreating[string, []byte](ttl),
	})
}

func (m *memoryStore) Get(fp string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.cache.GetEntry(fp)
	if !ok {
		return nil, false, nil
	}

	return entry.Value, true, nil
}

func (m *memoryStore) Put(fp string, data []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.cache.Set(fp, data)

	return nil
}

// Clear swaps in a fresh otter instance, dropping every entry at once.
func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache = newOtter(m.ttl)

	return nil
}
