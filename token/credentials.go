package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/jonwraymond/odoogate/scope"
)

// Credentials identify one caller against one ERP database. The JSON field
// names are the wire form used both inside sealed tokens and in the
// base64-encoded credentials header.
type Credentials struct {
	Endpoint string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// Validate checks that every field is present and well-formed: the endpoint
// must be an absolute http or https URL and the scope string must parse.
// Error messages name fields, never values.
func (c Credentials) Validate() error {
	switch {
	case c.Endpoint == "":
		return fmt.Errorf("%w: missing url", ErrInvalidCredentials)
	case c.Database == "":
		return fmt.Errorf("%w: missing database", ErrInvalidCredentials)
	case c.Username == "":
		return fmt.Errorf("%w: missing username", ErrInvalidCredentials)
	case c.Password == "":
		return fmt.Errorf("%w: missing password", ErrInvalidCredentials)
	case c.Scope == "":
		return fmt.Errorf("%w: missing scope", ErrInvalidCredentials)
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be an absolute http(s) URL", ErrInvalidCredentials)
	}

	if _, err := scope.Parse(c.Scope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return nil
}

// Redacted returns a copy with the password removed, safe for responses and
// logs.
func (c Credentials) Redacted() Credentials {
	c.Password = ""
	return c
}

// Fingerprint returns a short stable identifier derived from the non-secret
// fields, for correlating log lines without exposing anything sensitive.
func (c Credentials) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(c.Endpoint))
	h.Write([]byte{0})
	h.Write([]byte(c.Database))
	h.Write([]byte{0})
	h.Write([]byte(c.Username))
	return hex.EncodeToString(h.Sum(nil))[:12]
}
