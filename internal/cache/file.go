package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File permissions for cache entries and the cache directory.
const (
	entryPerms = 0o600
	dirPerms   = 0o700
)

// entrySuffix names cache entry files so Clear never touches foreign files
// in a shared directory.
const entrySuffix = ".cache"

// fileStore keeps one JSON file per fingerprint inside a directory.
// The stored-at timestamp is embedded in the file so expiry survives
// filesystems with coarse or unreliable mtimes. Concurrent writers to the
// same fingerprint race with last-write-wins semantics, which the expiry
// tolerance already accepts.
type fileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// fileEntry is the on-disk format of a single cache entry.
type fileEntry struct {
	StoredAt int64  `json:"stored_at"`
	Payload  []byte `json:"payload"`
}

// NewFile creates the directory-backed store rooted at dir, creating the
// directory if needed.
func NewFile(dir string, ttl time.Duration) (Store, error) {
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, &StoreError{Backend: File, Op: "init", Err: err}
	}

	return &fileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (f *fileStore) path(fp string) string {
	return filepath.Join(f.dir, fp+entrySuffix)
}

func (f *fileStore) Get(fp string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(fp))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, &StoreError{Backend: File, Op: "read", Err: err}
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = os.Remove(f.path(fp))

		return nil, false, nil
	}

	if f.now().Unix()-entry.StoredAt > int64(f.ttl.Seconds()) {
		// Stale entries are cleared when observed, not by a background sweep.
		_ = os.Remove(f.path(fp))

		return nil, false, nil
	}

	return entry.Payload, true, nil
}

func (f *fileStore) Put(fp string, data []byte) error {
	entry := fileEntry{
		StoredAt: f.now().Unix(),
		Payload:  data,
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return &StoreError{Backend: File, Op: "encode", Err: err}
	}

	if err := os.WriteFile(f.path(fp), encoded, entryPerms); err != nil {
		return &StoreError{Backend: File, Op: "write", Err: err}
	}

	return nil
}

func (f *fileStore) Clear() error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return &StoreError{Backend: File, Op: "list", Err: err}
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), entrySuffix) {
			continue
		}

		if err := os.Remove(filepath.Join(f.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &StoreError{Backend: File, Op: "remove", Err: err}
		}
	}

	return nil
}
