package cache

import (
	"crypto/md5" //nolint:gosec // cache key derivation, not integrity
	"encoding/hex"
	"net/url"
)

// volatileParams are excluded from fingerprints: they change on every
// request and would make logically identical calls never hit the cache.
var volatileParams = map[string]struct{}{
	"oauth_nonce":     {},
	"oauth_signature": {},
	"oauth_timestamp": {},
}

// Fingerprint derives the cache key for a request parameter set.
// Parameters are canonicalized (sorted, urlencoded) before hashing, so two
// parameter maps with the same contents always produce the same key
// regardless of iteration order.
func Fingerprint(params map[string]string) string {
	v := url.Values{}

	for k, val := range params {
		if _, drop := volatileParams[k]; drop {
			continue
		}

		v.Set(k, val)
	}

	// url.Values.Encode sorts by key.
	sum := md5.Sum([]byte(v.Encode())) //nolint:gosec // see above

	return hex.EncodeToString(sum[:])
}
