package main

import (
	"github.com/spf13/cobra"

	"github.com/vimeoapp/vimeo-go/internal/vimeo"
)

func newUploadCmd() *cobra.Command {
	var (
		replaceID string
		mimeType  string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a video file in chunks",
		Long:  "Uploads a video file using the chunked upload protocol: requests a ticket, posts the file in chunks, verifies receipt, and completes the ticket.",
		Args:  cobra.ExactArgs(1),
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

			opts := vimeo.UploadOptions{
				ReplaceID: replaceID,
				MimeType:  mimeType,
				Progress:  progressPrinter(),
			}

			videoID, err := client.UploadFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			statusf("Uploaded. Video ID: %s\n", videoID)
			return nil
		},
	}

	cmd.Flags().StringVar(&replaceID, "replace", "", "video ID to replace with the uploaded file")
	cmd.Flags().StringVar(&mimeType, "mimetype", "", "MIME type of the file (default: detected from extension)")

	return cmd
}
