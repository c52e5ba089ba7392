package vimeo

// Token is an OAuth 1.0a credential pair. The same type carries both
// lifecycle phases: the short-lived request token obtained during the
// handshake and the long-lived access token used afterwards.
type Token struct {
	Key    string
	Secret string
}

// IsZero reports whether no token is present.
func (t Token) IsZero() bool {
	return t.Key == "" && t.Secret == ""
}

// Endpoints groups the fixed API URLs. The three OAuth endpoints and the
// REST endpoint are configuration, not runtime discoveries; only the
// per-ticket upload endpoint is handed out dynamically.
type Endpoints struct {
	REST         string
	Authorize    string
	AccessToken  string
	RequestToken string
}

// DefaultEndpoints returns the production API URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		REST:         "https://vimeo.com/api/rest/v2",
		Authorize:    "https://vimeo.com/oauth/authorize",
		AccessToken:  "https://vimeo.com/oauth/access_token",
		RequestToken: "https://vimeo.com/oauth/request_token",
	}
}

// Permissions a caller may request during authorization.
const (
	PermissionRead   = "read"
	PermissionWrite  = "write"
	PermissionDelete = "delete"
)

// validPermission reports whether p is one of the three allowed levels.
func validPermission(p string) bool {
	return p == PermissionRead || p == PermissionWrite || p == PermissionDelete
}

// envelope is the top-level response shape shared by every REST method:
// a stat field plus an error object on failure.
type envelope struct {
	Stat string `json:"stat"`
	Err  *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"err"`
}
