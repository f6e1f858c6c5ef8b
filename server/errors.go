package server

import (
	"errors"
	"fmt"
)

// Construction and request errors.
var (
	// ErrNilBroker indicates Config.Broker was nil.
	ErrNilBroker = errors.New("server: nil broker")

	// ErrNilCodec indicates Config.Codec was nil.
	ErrNilCodec = errors.New("server: nil token codec")

	// ErrNoCredentials indicates a request carrying no recognized
	// credential header.
	ErrNoCredentials = errors.New("server: no credentials presented")

	// ErrBadCredentialHeader indicates an X-Auth-Credentials header that is
	// not base64-encoded credentials JSON.
	ErrBadCredentialHeader = errors.New("server: malformed credentials header")

	// ErrUnknownTool indicates a tool name outside the registry. Matched by
	// every *UnknownToolError.
	ErrUnknownTool = errors.New("server: unknown tool")

	// ErrBadRequest indicates a request body or argument set that could not
	// be decoded. Matched by every *BadRequestError.
	ErrBadRequest = errors.New("server: invalid request")
)

// UnknownToolError names the tool a caller asked for that the registry does
// not carry.
type UnknownToolError struct {
	Tool string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("server: unknown tool %q", e.Tool)
}

// Is reports whether target is ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// BadRequestError describes a request the server could not decode far enough
// to act on. Reason is safe to return to the caller.
type BadRequestError struct {
	Reason string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	return fmt.Sprintf("server: invalid request: %s", e.Reason)
}

// Is reports whether target is ErrBadRequest.
func (e *BadRequestError) Is(target error) bool {
	return target == ErrBadRequest
}

func badRequest(format string, args ...any) *BadRequestError {
	return &BadRequestError{Reason: fmt.Sprintf(format, args...)}
}
