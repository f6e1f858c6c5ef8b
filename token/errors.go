package token

import "errors"

// Sentinel errors for credential validation and token handling.
var (
	// ErrInvalidToken indicates a token that could not be decoded: wrong
	// encoding, truncation, unknown version, failed authentication, or a
	// payload that does not describe valid credentials. Decode failures are
	// deliberately indistinguishable beyond this sentinel.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrInvalidCredentials indicates credentials that fail validation.
	ErrInvalidCredentials = errors.New("token: invalid credentials")

	// ErrSecretTooShort indicates a process secret below MinSecretLen.
	ErrSecretTooShort = errors.New("token: encryption secret too short")
)
