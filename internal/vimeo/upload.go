package vimeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vimeoapp/vimeo-go/internal/transport"
)

// Remote methods of the upload protocol.
const (
	methodGetQuota     = "vimeo.videos.upload.getQuota"
	methodGetTicket    = "vimeo.videos.upload.getTicket"
	methodVerifyChunks = "vimeo.videos.upload.verifyChunks"
	methodComplete     = "vimeo.videos.upload.complete"
)

// API error codes raised locally before any byte is transmitted, matching
// the codes the remote would use.
const (
	codeQuotaExceeded = "707"
	codeFileTooLarge  = "710"
)

// UploadSource is what the uploader needs from its input: reads, seeking
// (to measure size and to position each chunk), and a name for the
// completion call and MIME guessing.
type UploadSource interface {
	io.Reader
	io.Seeker
	Name() string
}

// UploadOptions tune a single upload.
type UploadOptions struct {
	// ReplaceID replaces an existing video instead of creating a new one.
	ReplaceID string

	// MimeType overrides MIME guessing from the file name extension.
	// When empty and the name has no known extension, the type is left
	// unset and the remote endpoint may reject the upload.
	MimeType string

	// Progress, when non-nil, is called after each chunk with the bytes
	// sent so far and the total size.
	Progress func(sent, total int64)
}

// uploadTicket is the server-issued session for one upload attempt. It
// lives only for the duration of the Upload call.
type uploadTicket struct {
	ID           string `json:"id"`
	Endpoint     string `json:"endpoint"`
	MaxChunkSize int64  `json:"max_chunk_size"`
	MaxFileSize  int64  `json:"max_file_size"`
}

// UploadFile uploads the file at path, guessing the MIME type from the
// extension unless opts.MimeType is set. Returns the new video's ID, or
// the replaced video's ID when opts.ReplaceID is set.
func (c *Client) UploadFile(ctx context.Context, path string, opts UploadOptions) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("vimeo: opening upload file: %w", err)
	}
	defer f.Close()

	return c.Upload(ctx, f, opts)
}

// Upload runs the chunked upload protocol over src: quota check, ticket,
// sequential chunk POSTs, size verification, completion. Any step failure
// aborts the whole upload; there is no resume, and a retry re-uploads
// every byte under a fresh ticket.
func (c *Client) Upload(ctx context.Context, src UploadSource, opts UploadOptions) (string, error) {
	name := filepath.Base(src.Name())

	size, err := sourceSize(src)
	if err != nil {
		return "", err
	}

	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}

	c.logger.Info("starting upload",
		slog.String("name", name),
		slog.Int64("size", size),
		slog.String("mime_type", mimeType),
	)

	if err := c.checkQuota(ctx, size); err != nil {
		return "", err
	}

	ticket, err := c.getTicket(ctx, size, opts.ReplaceID)
	if err != nil {
		return "", err
	}

	if err := c.uploadChunks(ctx, ticket, src, name, mimeType, size, opts.Progress); err != nil {
		return "", err
	}

	if err := c.verifyUpload(ctx, ticket, size); err != nil {
		return "", err
	}

	return c.completeUpload(ctx, ticket, name, mimeType)
}

// sourceSize measures src by seeking to its end, then rewinds.
func sourceSize(src UploadSource) (int64, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("vimeo: upload source must support seeking: %w", err)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("vimeo: rewinding upload source: %w", err)
	}

	return size, nil
}

// checkQuota fails early when the account lacks free upload space.
func (c *Client) checkQuota(ctx context.Context, size int64) error {
	payload, err := c.Call(ctx, methodGetQuota, nil)
	if err != nil {
		return err
	}

	var quota struct {
		User struct {
			UploadSpace struct {
				Free int64 `json:"free"`
			} `json:"upload_space"`
		} `json:"user"`
	}

	if err := json.Unmarshal(payload, &quota); err != nil {
		return &ProtocolError{Method: methodGetQuota, Err: err}
	}

	if quota.User.UploadSpace.Free < size {
		return &APIError{
			Method: methodGetQuota,
			Code:   codeQuotaExceeded,
			Msg:    "the file is larger than the remaining upload quota",
		}
	}

	return nil
}

// getTicket obtains an upload session from the ticket endpoint.
func (c *Client) getTicket(ctx context.Context, size int64, replaceID string) (*uploadTicket, error) {
	params := map[string]string{}
	if replaceID != "" {
		params["video_id"] = replaceID
	}

	payload, err := c.Do(ctx, Request{Method: methodGetTicket, Params: params, NoCache: true})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Ticket uploadTicket `json:"ticket"`
	}

	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &ProtocolError{Method: methodGetTicket, Err: err}
	}

	ticket := resp.Ticket
	if ticket.ID == "" || ticket.Endpoint == "" || ticket.MaxChunkSize <= 0 {
		return nil, &ProtocolError{
			Method: methodGetTicket,
			Err:    fmt.Errorf("incomplete ticket: %+v", ticket),
		}
	}

	if ticket.MaxFileSize > 0 && size > ticket.MaxFileSize {
		return nil, &APIError{
			Method: methodGetTicket,
			Code:   codeFileTooLarge,
			Msg:    "file exceeds the maximum allowed size",
		}
	}

	c.logger.Debug("upload ticket obtained",
		slog.String("ticket_id", ticket.ID),
		slog.Int64("max_chunk_size", ticket.MaxChunkSize),
	)

	return &ticket, nil
}

// uploadChunks transmits src to the ticket endpoint in sequential chunks
// of at most MaxChunkSize bytes. The endpoint tracks the ticket as an
// ordered stream, so chunks are never parallelized. A failed chunk aborts
// immediately — the seek positioning exists so a caller-driven restart can
// re-read the input, not for automatic retries.
func (c *Client) uploadChunks(
	ctx context.Context, ticket *uploadTicket, src UploadSource,
	name, mimeType string, size int64, progress func(sent, total int64),
) error {
	chunkCount := int((size + ticket.MaxChunkSize - 1) / ticket.MaxChunkSize)
	if chunkCount == 0 {
		chunkCount = 1
	}

	for i := 0; i < chunkCount; i++ {
		offset := int64(i) * ticket.MaxChunkSize

		length := ticket.MaxChunkSize
		if remaining := size - offset; remaining < length {
			length = remaining
		}

		if _, err := src.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("vimeo: seeking to chunk %d: %w", i, err)
		}

		fields := map[string]string{
			"ticket_id": ticket.ID,
			"chunk_id":  strconv.Itoa(i),
		}

		part := transport.FilePart{
			FieldName:   "file_data",
			FileName:    name,
			ContentType: mimeType,
			Reader:      io.LimitReader(src, length),
		}

		resp, err := c.transport.PostMultipart(ctx, ticket.Endpoint, fields, part, nil)
		if err != nil {
			return fmt.Errorf("vimeo: uploading chunk %d/%d: %w", i+1, chunkCount, err)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("vimeo: uploading chunk %d/%d: unexpected status %d: %s",
				i+1, chunkCount, resp.StatusCode, resp.Body)
		}

		c.logger.Debug("chunk uploaded",
			slog.String("ticket_id", ticket.ID),
			slog.Int("chunk", i),
			slog.Int64("bytes", length),
		)

		if progress != nil {
			progress(offset+length, size)
		}
	}

	return nil
}

// verifyUpload asks the verification endpoint how many bytes arrived and
// compares the aggregate against the file size. The protocol only reports
// sizes, not checksums, so this is the strongest check available.
func (c *Client) verifyUpload(ctx context.Context, ticket *uploadTicket, size int64) error {
	payload, err := c.Do(ctx, Request{
		Method:  methodVerifyChunks,
		Params:  map[string]string{"ticket_id": ticket.ID},
		NoCache: true,
	})
	if err != nil {
		return err
	}

	var resp struct {
		Ticket struct {
			ID     string `json:"id"`
			Chunks struct {
				Chunk []struct {
					ID   int64 `json:"id"`
					Size int64 `json:"size"`
				} `json:"chunk"`
			} `json:"chunks"`
		} `json:"ticket"`
	}

	if err := json.Unmarshal(payload, &resp); err != nil {
		return &ProtocolError{Method: methodVerifyChunks, Err: err}
	}

	var received int64
	for _, chunk := range resp.Ticket.Chunks.Chunk {
		received += chunk.Size
	}

	if received != size {
		return &VerificationError{TicketID: ticket.ID, Expected: size, Received: received}
	}

	return nil
}

// completeUpload finalizes the ticket and returns the video ID.
func (c *Client) completeUpload(ctx context.Context, ticket *uploadTicket, name, mimeType string) (string, error) {
	params := map[string]string{
		"ticket_id": ticket.ID,
		"filename":  name,
	}

	if mimeType != "" {
		params["mimetype"] = mimeType
	}

	payload, err := c.Do(ctx, Request{Method: methodComplete, Params: params, NoCache: true})
	if err != nil {
		return "", err
	}

	var resp struct {
		Ticket struct {
			VideoID string `json:"video_id"`
		} `json:"ticket"`
	}

	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", &ProtocolError{Method: methodComplete, Err: err}
	}

	if resp.Ticket.VideoID == "" {
		return "", &ProtocolError{
			Method: methodComplete,
			Err:    fmt.Errorf("completion response missing video_id"),
		}
	}

	c.logger.Info("upload complete",
		slog.String("ticket_id", ticket.ID),
		slog.String("video_id", resp.Ticket.VideoID),
	)

	return resp.Ticket.VideoID, nil
}
