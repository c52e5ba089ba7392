package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [memory|file]",
		Short: "Clear cached API responses",
		Long:  "Clears the cache backend named by the argument, or the configured backend when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := buildLogger(cfg)

			client, err := buildClient(cfg, logger)
			if err != nil {
				return err
			}

			var kind cache.Kind
			if len(args) == 1 {
				kind = cache.Kind(args[0])
				if !kind.Valid() {
					return fmt.Errorf("unknown cache backend %q", args[0])
				}
			}

			if err := client.ClearCache(kind); err != nil {
				return err
			}

			statusf("Cache cleared.\n")
			return nil
		},
	}
}
