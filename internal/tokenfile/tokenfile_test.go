package tokenfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "default.json")

	tok := &Token{Key: "T", Secret: "S"}
	meta := map[string]string{"permission": "write"}

	require.NoError(t, Save(path, tok, meta))

	loaded, loadedMeta, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tok, loaded)
	assert.Equal(t, meta, loadedMeta)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	tok, meta, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, tok)
	assert.Nil(t, meta)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingTokenField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"meta":{}}`), 0o600))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token")
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Save(path, &Token{Key: "T", Secret: "S"}, nil))

	require.NoError(t, Remove(path))
	assert.NoFileExists(t, path)

	// Removing twice is fine.
	require.NoError(t, Remove(path))
}
