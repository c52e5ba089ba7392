package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/cache"
	"github.com/vimeoapp/vimeo-go/internal/config"
	"github.com/vimeoapp/vimeo-go/internal/tokenfile"
	"github.com/vimeoapp/vimeo-go/internal/vimeo"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd.
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool
)

// newRootCmd builds the fully-assembled root command with all subcommands
// registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vimeo-go",
		Short:   "Vimeo API client",
		Long:    "A command-line client for the Vimeo advanced API: authorization, method calls, and chunked video upload.",
		Version: version,
		// Silence Cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newCacheCmd())

	return cmd
}

// loadConfig resolves the effective configuration: --config flag, then
// the VIMEOGO_CONFIG environment variable, then the platform default.
// A missing file yields defaults so first-run commands still work.
func loadConfig() (*config.Config, error) {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// buildLogger creates an slog.Logger from the config log level, with
// --verbose and --quiet overriding because CLI flags always win.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo

	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildClient assembles a Client from the config: credentials, endpoint
// overrides, cache settings, and the saved access token when one exists.
func buildClient(cfg *config.Config, logger *slog.Logger) (*vimeo.Client, error) {
	if cfg.Consumer.Key == "" || cfg.Consumer.Secret == "" {
		return nil, fmt.Errorf("consumer credentials not configured — set [consumer] key and secret in %s", config.DefaultPath())
	}

	opts := vimeo.Options{
		HTTPTimeout: time.Duration(cfg.Network.TimeoutSeconds) * time.Second,
		Logger:      logger,
		AppName:     "vimeo-go",
	}

	if e := endpointsFromConfig(cfg); e != nil {
		opts.Endpoints = e
	}

	client := vimeo.New(cfg.Consumer.Key, cfg.Consumer.Secret, opts)

	if cfg.Cache.Backend != "" {
		ttl := time.Duration(cfg.Cache.ExpireSeconds) * time.Second
		if err := client.EnableCache(cache.Kind(cfg.Cache.Backend), cfg.CacheDir(), ttl); err != nil {
			return nil, fmt.Errorf("enabling cache: %w", err)
		}
	}

	tok, _, err := tokenfile.Load(config.TokenPath())
	if err != nil {
		return nil, err
	}

	if tok != nil {
		client.SetToken(tok.Key, tok.Secret)
	}

	return client, nil
}

// endpointsFromConfig merges configured endpoint overrides over the
// production defaults. Returns nil when nothing is overridden.
func endpointsFromConfig(cfg *config.Config) *vimeo.Endpoints {
	e := cfg.Endpoints
	if e.REST == "" && e.Authorize == "" && e.AccessToken == "" && e.RequestToken == "" {
		return nil
	}

	merged := vimeo.DefaultEndpoints()

	if e.REST != "" {
		merged.REST = e.REST
	}

	if e.Authorize != "" {
		merged.Authorize = e.Authorize
	}

	if e.AccessToken != "" {
		merged.AccessToken = e.AccessToken
	}

	if e.RequestToken != "" {
		merged.RequestToken = e.RequestToken
	}

	return &merged
}
