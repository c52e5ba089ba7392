package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL matches the remote API's recommended response cache lifetime.
const DefaultTTL = 600 * time.Second

// storeConfig records the parameters a backend was built with, so a
// disable/enable cycle with identical parameters reuses the live backend
// instead of discarding its contents.
type storeConfig struct {
	dir string
	ttl time.Duration
}

// Cache is the request-response cache controller. It owns at most one
// backend per kind and routes Get/Put to whichever backend is active.
// Disabling is non-destructive: backends keep their data and a later
// Enable with the same parameters sees it again.
//
// Backend I/O failures are degraded rather than surfaced: a failing read
// is a miss and a failing write is skipped, so the caller falls through
// to a live request. The failures are logged with their distinct
// *StoreError type preserved for callers using a Store directly.
type Cache struct {
	logger *slog.Logger

	mu      sync.Mutex
	active  Kind // empty when disabled
	stores  map[Kind]Store
	configs map[Kind]storeConfig
}

// New creates a disabled cache controller.
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		logger:  logger,
		stores:  make(map[Kind]Store),
		configs: make(map[Kind]storeConfig),
	}
}

// Enable activates caching with the given backend. dir is only meaningful
// for the file backend. Re-enabling with a different kind switches backends
// without merging or dropping either one's data.
func (c *Cache) Enable(kind Kind, dir string, ttl time.Duration) error {
	if !kind.Valid() {
		return fmt.Errorf("cache: unknown backend kind %q", kind)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := storeConfig{dir: dir, ttl: ttl}

	if existing, ok := c.stores[kind]; ok && c.configs[kind] == cfg && existing != nil {
		c.active = kind
		c.logger.Debug("cache re-enabled", slog.String("backend", string(kind)))

		return nil
	}

	store, err := c.build(kind, cfg)
	if err != nil {
		return err
	}

	c.stores[kind] = store
	c.configs[kind] = cfg
	c.active = kind

	c.logger.Debug("cache enabled",
		slog.String("backend", string(kind)),
		slog.Duration("ttl", ttl),
	)

	return nil
}

func (c *Cache) build(kind Kind, cfg storeConfig) (Store, error) {
	switch kind {
	case Memory:
		return NewMemory(cfg.ttl), nil
	case File:
		return NewFile(cfg.dir, cfg.ttl)
	default:
		return nil, fmt.Errorf("cache: unknown backend kind %q", kind)
	}
}

// Disable turns caching off without clearing stored data.
func (c *Cache) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = ""
}

// Enabled reports whether a backend is currently active.
func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active != ""
}

// Get returns the cached payload for fp. A disabled cache, an absent or
// expired entry, and a backend read failure all report a miss.
func (c *Cache) Get(fp string) ([]byte, bool) {
	store := c.activeStore()
	if store == nil {
		return nil, false
	}

	data, found, err := store.Get(fp)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss",
			slog.String("fingerprint", fp),
			slog.String("error", err.Error()),
		)

		return nil, false
	}

	return data, found
}

// Put stores the payload for fp. No-op when disabled; write failures are
// logged and dropped so they never fail the request that produced the data.
func (c *Cache) Put(fp string, data []byte) {
	store := c.activeStore()
	if store == nil {
		return
	}

	if err := store.Put(fp, data); err != nil {
		c.logger.Warn("cache write failed, entry dropped",
			slog.String("fingerprint", fp),
			slog.String("error", err.Error()),
		)
	}
}

// Clear removes all entries in the backend of the given kind, or in the
// active backend when kind is empty. Clearing a backend that was never
// instantiated, or an empty kind while disabled, is a no-op.
func (c *Cache) Clear(kind Kind) error {
	c.mu.Lock()

	if kind == "" {
		kind = c.active
	}

	store := c.stores[kind]
	c.mu.Unlock()

	if store == nil {
		return nil
	}

	return store.Clear()
}

func (c *Cache) activeStore() Store {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == "" {
		return nil
	}

	return c.stores[c.active]
}
