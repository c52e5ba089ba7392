package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/vimeo"
)

func newCallCmd() *cobra.Command {
	var (
		paramFlags []string
		usePost    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "call METHOD",
		Short: "Call an API method and print the JSON response",
		Long:  "Calls an API method (e.g. videos.getInfo) with the given parameters and prints the response payload as indented JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := buildLogger(cfg)

			client, err := buildClient(cfg, logger)
			if err != nil {
				return err
			}

			req := vimeo.Request{
				Method:  args[0],
				Params:  params,
				NoCache: noCache,
			}

			if usePost {
				req.HTTPMethod = http.MethodPost
			}

			payload, err := client.Do(cmd.Context(), req)
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, payload, "", "  "); err != nil {
				// Not valid JSON, print raw.
				fmt.Println(string(payload))
				return nil
			}

			pretty.WriteByte('\n')
			_, err = pretty.WriteTo(os.Stdout)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "method parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&usePost, "post", false, "send the request as a form POST")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache for this call")

	return cmd
}

// parseParams converts repeated key=value flags into a parameter map.
// Values may themselves contain '=' characters.
func parseParams(flags []string) (map[string]string, error) {
	params := make(map[string]string, len(flags))

	for _, p := range flags {
		key, value, found := strings.Cut(p, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		params[key] = value
	}

	return params, nil
}
