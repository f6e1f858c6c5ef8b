package token

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// MinSecretLen is the minimum length of the process-wide encryption
	// secret accepted by NewCodec.
	MinSecretLen = 16

	// blobVersion identifies the sealed-token layout:
	// [version:1][nonce:24][ciphertext+tag]. The version byte is bound into
	// the AEAD as associated data, so it cannot be swapped after sealing.
	blobVersion byte = 0x01

	// keyInfo domain-separates the derived AEAD key from any other use of
	// the same secret.
	keyInfo = "odoogate/token/v1"
)

// Overhead is the fixed size added to a payload by sealing, before base64.
const Overhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// encoding is strict base64url: non-canonical trailing bits are rejected on
// decode, so no two distinct token strings open to the same blob.
var encoding = base64.RawURLEncoding.Strict()

// Token is the decoded form of a sealed token.
type Token struct {
	Credentials Credentials
	IssuedAt    time.Time
}

// payload is the sealed JSON document.
type payload struct {
	Endpoint string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
	IssuedAt int64  `json:"issued_at"`
}

// Codec seals and opens credential tokens with a key derived from the
// process-wide secret.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: Encode fails only on invalid credentials or entropy failure;
//     every Decode failure matches ErrInvalidToken.
//   - Ownership: the secret passed to NewCodec is read once and not retained.
type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewCodec derives an XChaCha20-Poly1305 key from secret via HKDF-SHA256 and
// returns a codec bound to it. Secrets shorter than MinSecretLen are
// rejected: a guessable key would make every issued token forgeable.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrSecretTooShort, MinSecretLen, len(secret))
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("token: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("token: init cipher: %w", err)
	}

	return &Codec{aead: aead, now: time.Now}, nil
}

// Encode validates creds, stamps the current time, and seals everything into
// an opaque base64url token. The nonce is random, so encoding the same
// credentials twice yields different tokens.
func (c *Codec) Encode(creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	plain, err := json.Marshal(payload{
		Endpoint: creds.Endpoint,
		Database: creds.Database,
		Username: creds.Username,
		Password: creds.Password,
		Scope:    creds.Scope,
		IssuedAt: c.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("token: marshal payload: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token: read nonce: %w", err)
	}

	blob := make([]byte, 0, len(plain)+Overhead)
	blob = append(blob, blobVersion)
	blob = append(blob, nonce...)
	blob = c.aead.Seal(blob, nonce, plain, []byte{blobVersion})

	return encoding.EncodeToString(blob), nil
}

// Decode opens a sealed token. It is all-or-nothing: wrong encoding,
// truncation, version mismatch, failed authentication (wrong key or tampered
// data) and malformed payloads all return an error matching ErrInvalidToken.
func (c *Codec) Decode(tok string) (Token, error) {
	blob, err := encoding.DecodeString(tok)
	if err != nil {
		return Token{}, fmt.Errorf("%w: not base64url", ErrInvalidToken)
	}
	if len(blob) < Overhead {
		return Token{}, fmt.Errorf("%w: truncated", ErrInvalidToken)
	}
	if blob[0] != blobVersion {
		return Token{}, fmt.Errorf("%w: unsupported version", ErrInvalidToken)
	}

	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	box := blob[1+chacha20poly1305.NonceSizeX:]

	plain, err := c.aead.Open(nil, nonce, box, []byte{blobVersion})
	if err != nil {
		return Token{}, fmt.Errorf("%w: authentication failed (wrong key or tampered data)", ErrInvalidToken)
	}

	var pl payload
	if err := json.Unmarshal(plain, &pl); err != nil {
		return Token{}, fmt.Errorf("%w: malformed payload", ErrInvalidToken)
	}

	creds := Credentials{
		Endpoint: pl.Endpoint,
		Database: pl.Database,
		Username: pl.Username,
		Password: pl.Password,
		Scope:    pl.Scope,
	}
	if err := creds.Validate(); err != nil {
		return Token{}, fmt.Errorf("%w: payload failed validation", ErrInvalidToken)
	}

	return Token{
		Credentials: creds,
		IssuedAt:    time.Unix(pl.IssuedAt, 0).UTC(),
	}, nil
}
