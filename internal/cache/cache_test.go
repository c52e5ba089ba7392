package cache

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Fingerprint(map[string]string{"a": "1", "b": "2", "method": "vimeo.test.echo"})
	b := Fingerprint(map[string]string{"method": "vimeo.test.echo", "b": "2", "a": "1"})

	assert.Equal(t, a, b)
}

func TestFingerprint_ValueSensitive(t *testing.T) {
	a := Fingerprint(map[string]string{"a": "1"})
	b := Fingerprint(map[string]string{"a": "2"})
	c := Fingerprint(map[string]string{"b": "1"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFingerprint_DropsVolatileParams(t *testing.T) {
	bare := Fingerprint(map[string]string{"method": "vimeo.test.echo"})
	signed := Fingerprint(map[string]string{
		"method":          "vimeo.test.echo",
		"oauth_nonce":     "abc123",
		"oauth_timestamp": "1191242096",
		"oauth_signature": "sig==",
	})

	assert.Equal(t, bare, signed)
}

func TestStore_RoundTrip(t *testing.T) {
	fileStore, err := NewFile(t.TempDir(), time.Minute)
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(time.Minute),
		"file":   fileStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			err := store.Put("fp1", []byte(`{"stat":"ok"}`))
			require.NoError(t, err)

			got, found, err := store.Get("fp1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte(`{"stat":"ok"}`), got)

			_, found, err = store.Get("missing")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	store := NewMemory(time.Minute)

	require.NoError(t, store.Put("fp", []byte("old")))
	require.NoError(t, store.Put("fp", []byte("new")))

	got, found, err := store.Get("fp")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("new"), got)
}

func TestFileStore_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1_700_000_000, 0)
	store := &fileStore{dir: dir, ttl: time.Second, now: func() time.Time { return now }}

	require.NoError(t, store.Put("fp", []byte("payload")))

	// Within the TTL the entry is served.
	_, found, err := store.Get("fp")
	require.NoError(t, err)
	assert.True(t, found)

	// Past the TTL it is a miss, and the file is removed on observation.
	now = now.Add(2 * time.Second)

	_, found, err = store.Get("fp")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoFileExists(t, filepath.Join(dir, "fp"+entrySuffix))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemory(50 * time.Millisecond)

	require.NoError(t, store.Put("fp", []byte("payload")))

	time.Sleep(150 * time.Millisecond)

	_, found, err := store.Get("fp")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store := &fileStore{dir: dir, ttl: time.Minute, now: time.Now}

	require.NoError(t, store.Put("fp", []byte("payload")))

	// Corrupt the file in place.
	path := filepath.Join(dir, "fp"+entrySuffix)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, found, err := store.Get("fp")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoFileExists(t, path)
}

func TestCache_DisabledIsNoop(t *testing.T) {
	c := New(slog.Default())

	c.Put("fp", []byte("payload"))

	_, found := c.Get("fp")
	assert.False(t, found)
	assert.False(t, c.Enabled())
}

func TestCache_DisableIsNonDestructive(t *testing.T) {
	c := New(slog.Default())

	require.NoError(t, c.Enable(Memory, "", time.Minute))
	c.Put("fp", []byte("payload"))

	c.Disable()

	_, found := c.Get("fp")
	assert.False(t, found, "disabled cache must miss")

	require.NoError(t, c.Enable(Memory, "", time.Minute))

	got, found := c.Get("fp")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)
}

func TestCache_ClearTargetsOneBackend(t *testing.T) {
	c := New(slog.Default())
	dir := t.TempDir()

	require.NoError(t, c.Enable(Memory, "", time.Minute))
	c.Put("fp", []byte("in-memory"))

	require.NoError(t, c.Enable(File, dir, time.Minute))
	c.Put("fp", []byte("on-disk"))

	require.NoError(t, c.Clear(File))

	// File backend emptied.
	_, found := c.Get("fp")
	assert.False(t, found)

	// Memory backend untouched.
	require.NoError(t, c.Enable(Memory, "", time.Minute))

	got, found := c.Get("fp")
	require.True(t, found)
	assert.Equal(t, []byte("in-memory"), got)
}

func TestCache_ClearWhileDisabledIsNoop(t *testing.T) {
	c := New(slog.Default())

	require.NoError(t, c.Clear(""))
	require.NoError(t, c.Clear(File))
}

func TestCache_SwitchingKindsDoesNotMerge(t *testing.T) {
	c := New(slog.Default())

	require.NoError(t, c.Enable(Memory, "", time.Minute))
	c.Put("fp", []byte("in-memory"))

	require.NoError(t, c.Enable(File, t.TempDir(), time.Minute))

	_, found := c.Get("fp")
	assert.False(t, found, "file backend must not see memory entries")
}

func TestCache_EnableRejectsUnknownKind(t *testing.T) {
	c := New(slog.Default())

	err := c.Enable(Kind("redis"), "", time.Minute)
	require.Error(t, err)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(slog.Default())
	require.NoError(t, c.Enable(Memory, "", time.Minute))

	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()

			for j := 0; j < 200; j++ {
				c.Put("fp", []byte("payload"))
				c.Get("fp")
			}
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}

	got, found := c.Get("fp")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)
}
