package vimeo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/vimeoapp/vimeo-go/internal/cache"
	"github.com/vimeoapp/vimeo-go/internal/oauth1"
	"github.com/vimeoapp/vimeo-go/internal/transport"
)

// Options configures a Client. The zero value gives production endpoints,
// the default transport timeout, and the default logger.
type Options struct {
	// HTTPTimeout bounds each request. Zero means transport.DefaultTimeout.
	HTTPTimeout time.Duration

	// HTTPClient overrides the transport's HTTP client. Tests use this to
	// point at httptest servers. When set, HTTPTimeout is ignored.
	HTTPClient *http.Client

	// Endpoints overrides the API URLs. Nil means DefaultEndpoints.
	Endpoints *Endpoints

	// AppName is appended to request logging for operator attribution.
	AppName string

	Logger *slog.Logger
}

// Client calls the Vimeo advanced API on behalf of a single consumer
// application. It owns the active token and the cache configuration;
// both are instance state, never process-wide.
//
// A Client is safe for concurrent use: token reads during signing see a
// single consistent snapshot, and the cache serializes its own state.
// Independent Clients share nothing.
type Client struct {
	consumerKey string
	signer      *oauth1.Signer
	endpoints   Endpoints
	transport   *transport.Transport
	cache       *cache.Cache
	logger      *slog.Logger
	appName     string

	mu    sync.RWMutex
	token Token
}

// New creates a Client for the given consumer credentials.
func New(consumerKey, consumerSecret string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	endpoints := DefaultEndpoints()
	if opts.Endpoints != nil {
		endpoints = *opts.Endpoints
	}

	var tr *transport.Transport
	if opts.HTTPClient != nil {
		tr = transport.NewWithClient(opts.HTTPClient, logger)
	} else {
		tr = transport.New(opts.HTTPTimeout, logger)
	}

	return &Client{
		consumerKey: consumerKey,
		signer:      oauth1.NewSigner(consumerSecret),
		endpoints:   endpoints,
		transport:   tr,
		cache:       cache.New(logger),
		logger:      logger,
		appName:     opts.AppName,
	}
}

// Token returns the active token.
func (c *Client) Token() Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// SetToken installs a token as the active one. This is how an externally
// persisted access token is activated without re-running the handshake.
func (c *Client) SetToken(key, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = Token{Key: key, Secret: secret}
}

// EnableCache activates response caching. dir is only used by the file
// backend; ttl zero means cache.DefaultTTL.
func (c *Client) EnableCache(kind cache.Kind, dir string, ttl time.Duration) error {
	return c.cache.Enable(kind, dir, ttl)
}

// DisableCache turns caching off without clearing stored entries.
func (c *Client) DisableCache() {
	c.cache.Disable()
}

// ClearCache removes all entries for the given backend kind, or for the
// active backend when kind is empty.
func (c *Client) ClearCache(kind cache.Kind) error {
	return c.cache.Clear(kind)
}

// GetRequestToken obtains a request token from the request-token endpoint
// and installs it as the active token, replacing any prior one.
// callbackURL defaults to "oob" (out-of-band PIN flow).
func (c *Client) GetRequestToken(ctx context.Context, callbackURL string) (Token, error) {
	if callbackURL == "" {
		callbackURL = "oob"
	}

	c.logger.Info("requesting request token",
		slog.String("callback", callbackURL),
	)

	body, err := c.tokenRequest(ctx, c.endpoints.RequestToken,
		map[string]string{"oauth_callback": callbackURL}, Token{})
	if err != nil {
		return Token{}, err
	}

	tok, err := parseTokenResponse(body)
	if err != nil {
		return Token{}, err
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	c.logger.Debug("request token obtained", slog.String("token", tok.Key))

	return tok, nil
}

// AuthorizeURL builds the URL the user must visit to authorize the given
// request token. Pure: no network, no state change.
func (c *Client) AuthorizeURL(token Token, permission string) (string, error) {
	if !validPermission(permission) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, permission)
	}

	q := url.Values{}
	q.Set("oauth_token", token.Key)
	q.Set("permission", permission)

	return c.endpoints.Authorize + "?" + q.Encode(), nil
}

// Auth runs the first half of the handshake: obtains a request token
// (overwriting the active token) and returns the authorization URL for it.
func (c *Client) Auth(ctx context.Context, permission, callbackURL string) (string, error) {
	if permission == "" {
		permission = PermissionRead
	}

	if !validPermission(permission) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, permission)
	}

	tok, err := c.GetRequestToken(ctx, callbackURL)
	if err != nil {
		return "", err
	}

	return c.AuthorizeURL(tok, permission)
}

// GetAccessToken exchanges the active request token plus the user-supplied
// verifier for an access token. The exchange does not activate the result:
// callers install it with SetToken, matching the separation between
// exchanging and activating.
func (c *Client) GetAccessToken(ctx context.Context, verifier string) (Token, error) {
	current := c.Token()
	if current.IsZero() {
		return Token{}, fmt.Errorf("%w: run the request-token step first", ErrNoToken)
	}

	c.logger.Info("exchanging request token for access token")

	body, err := c.tokenRequest(ctx, c.endpoints.AccessToken,
		map[string]string{"oauth_verifier": verifier}, current)
	if err != nil {
		return Token{}, err
	}

	tok, err := parseTokenResponse(body)
	if err != nil {
		return Token{}, err
	}

	c.logger.Debug("access token obtained", slog.String("token", tok.Key))

	return tok, nil
}

// tokenRequest signs and POSTs to one of the two token endpoints. The
// response is the raw body: token endpoints speak urlencoded pairs, not
// the JSON envelope.
func (c *Client) tokenRequest(ctx context.Context, endpoint string, extra map[string]string, tok Token) ([]byte, error) {
	oauthParams := c.oauthParams(tok)
	for k, v := range extra {
		oauthParams[k] = v
	}

	header, err := c.sign(http.MethodPost, endpoint, oauthParams, nil, tok.Secret)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.PostForm(ctx, endpoint, url.Values{}, header)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{
			Method: endpoint,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Body),
		}
	}

	return resp.Body, nil
}

// oauthParams builds the identity portion of the OAuth parameter set:
// everything except the per-request nonce, timestamp, and signature.
func (c *Client) oauthParams(tok Token) map[string]string {
	params := map[string]string{
		"oauth_consumer_key":     c.consumerKey,
		"oauth_version":          oauth1.Version,
		"oauth_signature_method": oauth1.SignatureMethod,
	}

	if tok.Key != "" {
		params["oauth_token"] = tok.Key
	}

	return params
}

// sign adds the nonce and timestamp, computes the signature over the full
// parameter set, and returns the Authorization header.
func (c *Client) sign(verb, endpoint string, oauthParams, apiParams map[string]string, tokenSecret string) (http.Header, error) {
	oauthParams["oauth_nonce"] = oauth1.Nonce()
	oauthParams["oauth_timestamp"] = oauth1.Timestamp()

	signed := make(map[string]string, len(oauthParams)+len(apiParams))
	for k, v := range oauthParams {
		signed[k] = v
	}

	for k, v := range apiParams {
		signed[k] = v
	}

	signature, err := c.signer.Sign(verb, endpoint, signed, tokenSecret)
	if err != nil {
		return nil, err
	}

	oauthParams["oauth_signature"] = signature

	header := http.Header{}
	header.Set("Authorization", oauth1.AuthorizationHeader("", oauthParams))

	return header, nil
}

// parseTokenResponse decodes the urlencoded token endpoint response.
func parseTokenResponse(body []byte) (Token, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Token{}, &ProtocolError{Method: "token exchange", Err: err}
	}

	tok := Token{
		Key:    values.Get("oauth_token"),
		Secret: values.Get("oauth_token_secret"),
	}

	if tok.Key == "" || tok.Secret == "" {
		return Token{}, &ProtocolError{
			Method: "token exchange",
			Err:    fmt.Errorf("response missing oauth_token/oauth_token_secret: %q", body),
		}
	}

	return tok, nil
}
