package odoorpc

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote interaction.
var (
	// ErrConnectionFailed indicates a session could not be established:
	// unreachable endpoint or rejected credentials. Matched by every
	// *ConnectError.
	ErrConnectionFailed = errors.New("odoorpc: connection failed")

	// ErrRemoteOperation indicates a dispatched operation failed remotely.
	// Matched by every *RemoteError.
	ErrRemoteOperation = errors.New("odoorpc: remote operation failed")
)

// ConnectError describes a failed authentication. It never carries the
// password.
type ConnectError struct {
	Endpoint string
	Database string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("odoorpc: connect to %s (db %s) failed: %s: %v", e.Endpoint, e.Database, e.Reason, e.Err)
	}
	return fmt.Sprintf("odoorpc: connect to %s (db %s) failed: %s", e.Endpoint, e.Database, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ConnectError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnectionFailed.
func (e *ConnectError) Is(target error) bool { return target == ErrConnectionFailed }

// RemoteError describes an operation the remote side rejected or that died
// in transit. Code and Detail are filled from the XML-RPC fault when the
// server supplied one.
type RemoteError struct {
	Model     string
	Operation string
	Code      int
	Detail    string
	Err       error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("odoorpc: %s on %s failed: fault %d: %s", e.Operation, e.Model, e.Code, e.Detail)
	}
	return fmt.Sprintf("odoorpc: %s on %s failed: %v", e.Operation, e.Model, e.Err)
}

// Unwrap returns the underlying cause, if any.
func (e *RemoteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRemoteOperation.
func (e *RemoteError) Is(target error) bool { return target == ErrRemoteOperation }
