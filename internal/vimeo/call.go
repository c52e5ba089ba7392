package vimeo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vimeoapp/vimeo-go/internal/cache"
)

// methodPrefix is prepended to bare method names, so callers may write
// either "videos.getInfo" or "vimeo.videos.getInfo".
const methodPrefix = "vimeo."

// Request describes one generic API invocation. Zero values mean: GET,
// the default REST endpoint, caching allowed.
type Request struct {
	// Method is the remote method name, with or without the "vimeo." prefix.
	Method string

	// Params are the method's parameters. oauth_-prefixed keys join the
	// OAuth parameter set instead of the API parameters.
	Params map[string]string

	// HTTPMethod is GET or POST. Empty means GET.
	HTTPMethod string

	// URL overrides the REST endpoint.
	URL string

	// NoCache bypasses the cache for this request in both directions.
	NoCache bool
}

// Call invokes a remote method with default request settings and returns
// the parsed response payload.
func (c *Client) Call(ctx context.Context, method string, params map[string]string) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: method, Params: params})
}

// Do invokes a remote method. The flow is: fingerprint, cache lookup,
// sign, execute, envelope check, cache store. A stale cached entry reads
// as a miss and is overwritten by the fresh response, so staleness is
// cleared on access rather than between requests.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.Method
	if method != "" && !strings.HasPrefix(method, methodPrefix) {
		method = methodPrefix + method
	}

	httpMethod := strings.ToUpper(req.HTTPMethod)
	if httpMethod == "" {
		httpMethod = http.MethodGet
	}

	endpoint := req.URL
	if endpoint == "" {
		endpoint = c.endpoints.REST
	}

	// Single consistent token snapshot for fingerprinting and signing.
	tok := c.Token()

	oauthParams := c.oauthParams(tok)
	apiParams := map[string]string{"format": "json"}

	if method != "" {
		apiParams["method"] = method
	}

	for k, v := range req.Params {
		if strings.HasPrefix(k, "oauth_") {
			oauthParams[k] = v
		} else {
			apiParams[k] = v
		}
	}

	fp := fingerprint(oauthParams, apiParams)

	useCache := !req.NoCache && c.cache.Enabled()
	if useCache {
		if data, ok := c.cache.Get(fp); ok {
			c.logger.Debug("cache hit",
				slog.String("method", method),
				slog.String("fingerprint", fp),
			)

			return json.RawMessage(data), nil
		}
	}

	header, err := c.sign(httpMethod, endpoint, oauthParams, apiParams, tok.Secret)
	if err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, httpMethod, endpoint, apiParams, header)
	if err != nil {
		return nil, err
	}

	payload, err := parseEnvelope(method, resp)
	if err != nil {
		return nil, err
	}

	if useCache {
		c.cache.Put(fp, payload)
	}

	return payload, nil
}

func (c *Client) execute(ctx context.Context, httpMethod, endpoint string, apiParams map[string]string, header http.Header) ([]byte, error) {
	values := url.Values{}
	for k, v := range apiParams {
		values.Set(k, v)
	}

	switch httpMethod {
	case http.MethodGet:
		resp, err := c.transport.Get(ctx, endpoint, values, header)
		if err != nil {
			return nil, err
		}

		return resp.Body, nil
	case http.MethodPost:
		resp, err := c.transport.PostForm(ctx, endpoint, values, header)
		if err != nil {
			return nil, err
		}

		return resp.Body, nil
	default:
		return nil, fmt.Errorf("vimeo: unsupported HTTP method %q", httpMethod)
	}
}

// parseEnvelope checks the response's top-level status and returns the
// raw payload on success.
func parseEnvelope(method string, body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ProtocolError{Method: method, Err: err}
	}

	if env.Stat != "ok" {
		apiErr := &APIError{Method: method}
		if env.Err != nil {
			apiErr.Code = env.Err.Code
			apiErr.Msg = env.Err.Msg
		}

		return nil, apiErr
	}

	return json.RawMessage(body), nil
}

// fingerprint derives the cache key from the merged parameter set. The
// volatile per-request OAuth parameters are excluded by the cache package,
// so the key is stable across retries of the same logical request.
func fingerprint(oauthParams, apiParams map[string]string) string {
	merged := make(map[string]string, len(oauthParams)+len(apiParams))
	for k, v := range oauthParams {
		merged[k] = v
	}

	for k, v := range apiParams {
		merged[k] = v
	}

	return cache.Fingerprint(merged)
}
