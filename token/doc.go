// Package token seals caller credentials into opaque bearer tokens and
// opens them again.
//
// A token is the authenticated encryption of a credentials payload (endpoint
// URL, database, username, password, scope) plus the time it was issued.
// The codec is bound to a single process-wide secret: without that secret a
// token reveals nothing and cannot be forged, and any modification of a
// sealed token fails authentication as a whole. Encoding is deliberately
// non-deterministic (random nonce), so equal credentials never produce equal
// tokens.
//
//	codec, err := token.NewCodec([]byte(cfg.EncryptionKey))
//	tok, err := codec.Encode(creds)
//	out, err := codec.Decode(tok) // out.Credentials, out.IssuedAt
//
// Decode is all-or-nothing: every failure mode (encoding, framing, cipher,
// payload) surfaces as an error matching ErrInvalidToken, with no oracle for
// which stage failed. Tokens carry no expiry; IssuedAt is recorded for
// consumers that want to enforce freshness.
package token
