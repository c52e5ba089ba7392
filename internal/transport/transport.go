// Package transport executes fully-formed HTTP requests for the API
// client: plain GETs with query parameters, form-encoded POSTs, and
// multipart file POSTs for upload chunks. It returns status and raw body
// without interpreting either; envelope parsing is the client's job.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds any single request, matching the original client's
// 30-second socket timeout. A request that exceeds it surfaces as a
// transport error instead of hanging.
const DefaultTimeout = 30 * time.Second

const userAgent = "vimeo-go/0.1"

// Error is a transport-level failure: DNS, connect, timeout, or a broken
// response stream. API-level failures never produce an Error — those come
// back as ordinary responses with a failure envelope.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// FilePart describes the file portion of a multipart POST.
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Transport issues HTTP requests with a bounded timeout. Safe for
// concurrent use; it holds no per-request state.
type Transport struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a Transport with the given request timeout.
// A zero timeout falls back to DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return NewWithClient(&http.Client{Timeout: timeout}, logger)
}

// NewWithClient creates a Transport around an existing http.Client.
// Tests use this to point at httptest servers with custom clients.
func NewWithClient(client *http.Client, logger *slog.Logger) *Transport {
	if client == nil {
		client = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Transport{client: client, logger: logger}
}

// Get issues a GET with the query parameters appended to rawURL.
func (t *Transport) Get(ctx context.Context, rawURL string, query url.Values, header http.Header) (*Response, error) {
	requestURL := rawURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}

		requestURL = rawURL + sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("transport: creating GET request: %w", err)
	}

	return t.do(req, header)
}

// PostForm issues a form-encoded POST.
func (t *Transport) PostForm(ctx context.Context, rawURL string, form url.Values, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("transport: creating POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req, header)
}

// PostMultipart issues a multipart/form-data POST carrying the given form
// fields plus one file part. The body is assembled up front — callers
// bound part sizes, so buffering one chunk is acceptable.
func (t *Transport) PostMultipart(
	ctx context.Context, rawURL string, fields map[string]string, file FilePart, header http.Header,
) (*Response, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("transport: writing multipart field %q: %w", k, err)
		}
	}

	part, err := createFilePart(w, file)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, fmt.Errorf("transport: writing multipart file part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("transport: finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("transport: creating multipart request: %w", err)
	}

	req.Header.Set("Content-Type", w.FormDataContentType())

	return t.do(req, header)
}

// createFilePart opens the file part, honoring an explicit content type
// when one was supplied.
func createFilePart(w *multipart.Writer, file FilePart) (io.Writer, error) {
	if file.ContentType == "" {
		part, err := w.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, fmt.Errorf("transport: creating multipart file part: %w", err)
		}

		return part, nil
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
	h.Set("Content-Type", file.ContentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("transport: creating multipart file part: %w", err)
	}

	return part, nil
}

// do executes the request, merges extra headers, and reads the full body.
// The response is returned for any HTTP status; only network-level
// failures produce an error.
func (t *Transport) do(req *http.Request, header http.Header) (*Response, error) {
	req.Header.Set("User-Agent", userAgent)

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	t.logger.Debug("executing request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: req.Method, URL: req.URL.String(), Err: err}
	}

	t.logger.Debug("request completed",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
