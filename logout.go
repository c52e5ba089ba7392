package main

import (
	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/config"
	"github.com/vimeoapp/vimeo-go/internal/tokenfile"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tokenfile.Remove(config.TokenPath()); err != nil {
				return err
			}

			statusf("Logged out.\n")
			return nil
		},
	}
}
