package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_AppendsQueryAndHeaders(t *testing.T) {
	var gotURL, gotAuth, gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")

		_, _ = w.Write([]byte(`{"stat":"ok"}`))
	}))
	defer srv.Close()

	tr := New(time.Second, slog.Default())

	header := http.Header{}
	header.Set("Authorization", `OAuth realm=""`)

	resp, err := tr.Get(context.Background(), srv.URL+"/api/rest/v2",
		url.Values{"method": {"vimeo.test.echo"}}, header)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte(`{"stat":"ok"}`), resp.Body)
	assert.Equal(t, "/api/rest/v2?method=vimeo.test.echo", gotURL)
	assert.Equal(t, `OAuth realm=""`, gotAuth)
	assert.Equal(t, userAgent, gotUA)
}

func TestPostForm(t *testing.T) {
	var gotContentType, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")

		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(time.Second, slog.Default())

	resp, err := tr.PostForm(context.Background(), srv.URL,
		url.Values{"oauth_verifier": {"123"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "oauth_verifier=123", gotBody)
}

func TestPostMultipart(t *testing.T) {
	var gotTicket, gotChunk, gotFile, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotTicket = r.FormValue("ticket_id")
		gotChunk = r.FormValue("chunk_id")

		f, header, err := r.FormFile("file_data")
		require.NoError(t, err)
		defer f.Close()

		data, _ := io.ReadAll(f)
		gotFile = string(data)
		gotContentType = header.Header.Get("Content-Type")

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(time.Second, slog.Default())

	resp, err := tr.PostMultipart(context.Background(), srv.URL,
		map[string]string{"ticket_id": "abc", "chunk_id": "0"},
		FilePart{
			FieldName:   "file_data",
			FileName:    "clip.mp4",
			ContentType: "video/mp4",
			Reader:      strings.NewReader("chunk bytes"),
		}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", gotTicket)
	assert.Equal(t, "0", gotChunk)
	assert.Equal(t, "chunk bytes", gotFile)
	assert.Equal(t, "video/mp4", gotContentType)
}

func TestDo_NetworkErrorIsTransportError(t *testing.T) {
	tr := New(time.Second, slog.Default())

	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := tr.Get(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)

	var terr *Error

	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.MethodGet, terr.Op)
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tr := New(20*time.Millisecond, slog.Default())

	_, err := tr.Get(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)

	var terr *Error

	assert.True(t, errors.As(err, &terr))
}

func TestDo_NonSuccessStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	tr := New(time.Second, slog.Default())

	resp, err := tr.Get(context.Background(), srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, []byte("boom"), resp.Body)
}
