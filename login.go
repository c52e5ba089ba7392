package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/config"
	"github.com/vimeoapp/vimeo-go/internal/tokenfile"
)

func newLoginCmd() *cobra.Command {
	var permission string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize with Vimeo and save the access token",
		Long:  "Runs the OAuth authorization flow: prints a URL to open in a browser, then exchanges the verifier you paste back for an access token.",
		Args:  cobra.NoArgs,
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

			ctx := cmd.Context()

			url, err := client.Auth(ctx, permission, "")
			if err != nil {
				return err
			}

			statusf("Open this URL in your browser and authorize the application:\n\n  %s\n\n", url)
			fmt.Print("Enter the verifier code shown after authorizing: ")

			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading verifier: %w", err)
			}

			verifier := strings.TrimSpace(line)
			if verifier == "" {
				return fmt.Errorf("no verifier entered")
			}

			tok, err := client.GetAccessToken(ctx, verifier)
			if err != nil {
				return err
			}

			client.SetToken(tok.Key, tok.Secret)

			err = tokenfile.Save(config.TokenPath(), &tokenfile.Token{Key: tok.Key, Secret: tok.Secret},
				map[string]string{"permission": permission})
			if err != nil {
				return err
			}

			statusf("Logged in. Token saved to %s\n", config.TokenPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&permission, "permission", "read", "access level to request (read, write, or delete)")

	return cmd
}
