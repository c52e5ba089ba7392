// Package tokenfile handles reading and writing the saved access token.
// Token files store an OAuth 1.0a key/secret pair alongside optional
// metadata (app name, authorized permission). This is a leaf package with
// no dependency on the client, so both the CLI and config can import it.
package tokenfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePerms restricts token files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the token directory.
const DirPerms = 0o700

// Token is the persisted OAuth credential pair.
type Token struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// File is the on-disk format for token files.
type File struct {
	Token *Token            `json:"token"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Load reads a saved token file from disk. Returns (nil, nil, nil) if the
// file does not exist — not logged in is not an error at this layer.
func Load(path string) (*Token, map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil //nolint:nilnil // sentinel for "not found"
	}

	if err != nil {
		return nil, nil, fmt.Errorf("tokenfile: reading %s: %w", path, err)
	}

	var tf File
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, nil, fmt.Errorf("tokenfile: decoding %s: %w", path, err)
	}

	if tf.Token == nil || tf.Token.Key == "" {
		return nil, nil, fmt.Errorf("tokenfile: %s missing token (re-login required)", path)
	}

	return tf.Token, tf.Meta, nil
}

// Save writes a token file to disk atomically (write-to-temp + rename)
// with 0600 permissions. Never logs token values.
func Save(path string, tok *Token, meta map[string]string) error {
	tf := File{Token: tok, Meta: meta}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenfile: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("tokenfile: creating directory %s: %w", dir, mkErr)
	}

	// Temp file in the same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("tokenfile: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenfile: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tokenfile: renaming: %w", err)
	}

	success = true

	return nil
}

// Remove deletes the token file. Returns nil if it does not exist.
func Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
