package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonwraymond/odoogate/token"
)

// Credential-carrying headers, in precedence order.
const (
	headerAPIKey          = "X-Api-Key"
	headerAuthorization   = "Authorization"
	headerAuthCredentials = "X-Auth-Credentials"

	bearerPrefix = "Bearer "
)

// credentialsFromRequest normalizes the request's credential headers to a
// Credentials value. Sealed tokens (X-API-Key, then Authorization: Bearer)
// take precedence over raw base64 credentials (X-Auth-Credentials); the
// first header present wins, it is not a fallback chain across bad values.
func (s *Server) credentialsFromRequest(r *http.Request) (token.Credentials, error) {
	if key := r.Header.Get(headerAPIKey); key != "" {
		return s.credentialsFromToken(key)
	}
	if auth := r.Header.Get(headerAuthorization); strings.HasPrefix(auth, bearerPrefix) {
		return s.credentialsFromToken(strings.TrimPrefix(auth, bearerPrefix))
	}
	if raw := r.Header.Get(headerAuthCredentials); raw != "" {
		return credentialsFromHeader(raw)
	}
	return token.Credentials{}, ErrNoCredentials
}

func (s *Server) credentialsFromToken(tok string) (token.Credentials, error) {
	out, err := s.codec.Decode(tok)
	if err != nil {
		return token.Credentials{}, err
	}
	return out.Credentials, nil
}

// credentialsFromHeader decodes a base64(JSON credentials) header value. The
// JSON field names match the sealed-token payload, so a caller can submit
// the same document either way. Both standard and URL-safe base64 are
// accepted, with or without padding.
func credentialsFromHeader(raw string) (token.Credentials, error) {
	decoded, err := decodeBase64(raw)
	if err != nil {
		return token.Credentials{}, fmt.Errorf("%w: %v", ErrBadCredentialHeader, err)
	}

	var creds token.Credentials
	if err := json.Unmarshal(decoded, &creds); err != nil {
		return token.Credentials{}, fmt.Errorf("%w: not a credentials object", ErrBadCredentialHeader)
	}
	if err := creds.Validate(); err != nil {
		return token.Credentials{}, err
	}
	return creds, nil
}

func decodeBase64(raw string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(raw); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("not valid base64")
}
