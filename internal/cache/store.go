// Package cache maps request fingerprints to serialized API responses.
// Two interchangeable backends exist: an in-process memory store and a
// one-file-per-fingerprint directory store. Backends are selected at
// enable time behind the Store interface; expiry is owned by each backend,
// so Get never returns a stale entry.
package cache

import (
	"fmt"
)

// Kind selects a cache backend.
type Kind string

const (
	Memory Kind = "memory"
	File   Kind = "file"
)

// Valid reports whether k names a known backend.
func (k Kind) Valid() bool {
	return k == Memory || k == File
}

// Store is a single cache backend. Implementations must be safe for
// concurrent use and must treat expired entries as absent.
type Store interface {
	// Get returns the entry for fp, or found=false if absent or expired.
	Get(fp string) (data []byte, found bool, err error)
	// Put writes or overwrites the entry for fp with a fresh timestamp.
	Put(fp string, data []byte) error
	// Clear removes every entry in the backend.
	Clear() error
}

// StoreError is a backend I/O failure, kept distinguishable from API and
// transport errors so callers can degrade it to a cache miss.
type StoreError struct {
	Backend Kind
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache: %s backend %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
