package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vimeoapp/vimeo-go/internal/config"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests that
// exercise helpers directly must save and restore the globals they touch.

func resetFlags(t *testing.T) {
	t.Helper()

	oldConfig := flagConfigPath
	oldVerbose := flagVerbose
	oldQuiet := flagQuiet

	t.Cleanup(func() {
		flagConfigPath = oldConfig
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
	})

	flagConfigPath = ""
	flagVerbose = false
	flagQuiet = false
}

// --- buildLogger tests ---

func TestBuildLogger_ConfigLevel(t *testing.T) {
	resetFlags(t)

	cfg := config.Default()
	cfg.Logging.Level = "warn"

	logger := buildLogger(cfg)

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestBuildLogger_VerboseOverridesConfig(t *testing.T) {
	resetFlags(t)
	flagVerbose = true

	cfg := config.Default()
	cfg.Logging.Level = "error"

	logger := buildLogger(cfg)

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_QuietWins(t *testing.T) {
	resetFlags(t)
	flagVerbose = true
	flagQuiet = true

	cfg := config.Default()

	logger := buildLogger(cfg)

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

// --- command wiring tests ---

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "logout", "call", "upload", "cache"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := newRootCmd()

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("quiet"))
}

// --- buildClient tests ---

func TestBuildClient_MissingCredentials(t *testing.T) {
	resetFlags(t)

	cfg := config.Default()

	_, err := buildClient(cfg, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer credentials")
}

// --- endpointsFromConfig tests ---

func TestEndpointsFromConfig_NoOverrides(t *testing.T) {
	cfg := config.Default()

	assert.Nil(t, endpointsFromConfig(cfg))
}

func TestEndpointsFromConfig_PartialOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoints.REST = "http://localhost:9999/api/rest/v2"

	e := endpointsFromConfig(cfg)
	require.NotNil(t, e)

	assert.Equal(t, "http://localhost:9999/api/rest/v2", e.REST)
	assert.Equal(t, "https://vimeo.com/oauth/authorize", e.Authorize)
}

// --- parseParams tests ---

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"video_id=123", "title=a=b"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"video_id": "123", "title": "a=b"}, params)
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := parseParams([]string{"no-equals"})
	require.Error(t, err)

	_, err = parseParams([]string{"=value"})
	require.Error(t, err)
}

// --- formatSize tests ---

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}
