// Package oauth1 implements the subset of OAuth 1.0a needed to sign
// Vimeo advanced API requests: RFC 3986 parameter encoding, signature
// base string canonicalization, and HMAC-SHA1 signing per RFC 5849 §3.4.
// It is not a general OAuth library — there is no token storage, no
// redirect handling, and only the HMAC-SHA1 signature method.
package oauth1

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // nonce derivation, not integrity
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Protocol parameter values included in every signed request.
const (
	Version         = "1.0"
	SignatureMethod = "HMAC-SHA1"
)

// Signer computes OAuth 1.0a signatures for a single consumer identity.
// It is stateless apart from the consumer secret and safe for concurrent use.
type Signer struct {
	consumerSecret string
}

// NewSigner creates a Signer for the given consumer secret.
func NewSigner(consumerSecret string) *Signer {
	return &Signer{consumerSecret: consumerSecret}
}

// Sign computes the base64-encoded HMAC-SHA1 signature for a request.
// params must contain every request parameter and every oauth_* parameter
// except oauth_signature itself. tokenSecret is empty for the
// request-token step, where no token exists yet.
func (s *Signer) Sign(verb, rawURL string, params map[string]string, tokenSecret string) (string, error) {
	base, err := SignatureBase(verb, rawURL, params)
	if err != nil {
		return "", err
	}

	key := Encode(s.consumerSecret) + "&" + Encode(tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SignatureBase builds the signature base string per RFC 5849 §3.4.1:
// VERB&enc(baseURL)&enc(sortedParamString). The URL's query and fragment
// are stripped; scheme and host are lowercased.
func SignatureBase(verb, rawURL string, params map[string]string) (string, error) {
	base, err := baseURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("oauth1: invalid request URL %q: %w", rawURL, err)
	}

	return strings.ToUpper(verb) + "&" + Encode(base) + "&" + Encode(parameterString(params)), nil
}

// baseURL strips the query and fragment and lowercases scheme and host.
func baseURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	return u.String(), nil
}

// parameterString encodes, sorts, and joins the parameter set per
// RFC 5849 §3.4.1.3.2: sort by encoded key, then encoded value.
func parameterString(params map[string]string) string {
	type pair struct{ k, v string }

	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, pair{Encode(k), Encode(v)})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}

		return pairs[i].v < pairs[j].v
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.k + "=" + p.v
	}

	return strings.Join(parts, "&")
}

const upperHex = "0123456789ABCDEF"

// Encode percent-encodes s per RFC 3986 §2.1 with the unreserved set
// mandated by RFC 5849 §3.6: ALPHA, DIGIT, '-', '.', '_', '~'. All other
// bytes, including UTF-8 continuation bytes, are encoded with uppercase hex.
func Encode(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	default:
		return false
	}
}

// Nonce returns a fresh per-request nonce: the hex MD5 of a random UUID.
// Uniqueness within a process lifetime is overwhelming; the digest only
// normalizes the shape to 32 hex characters.
func Nonce() string {
	sum := md5.Sum([]byte(uuid.NewString())) //nolint:gosec // not a security digest

	return hex.EncodeToString(sum[:])
}

// Timestamp returns the current Unix time as a decimal string.
func Timestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// AuthorizationHeader renders the OAuth Authorization header value from a
// set of oauth_* parameters, including oauth_signature. Keys are emitted in
// sorted order so the header is deterministic for identical inputs.
func AuthorizationHeader(realm string, oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder

	b.WriteString(`OAuth realm="`)
	b.WriteString(Encode(realm))
	b.WriteString(`"`)

	for _, k := range keys {
		b.WriteString(",")
		b.WriteString(Encode(k))
		b.WriteString(`="`)
		b.WriteString(Encode(oauthParams[k]))
		b.WriteString(`"`)
	}

	return b.String()
}
