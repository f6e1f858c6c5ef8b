package scope

import (
	"errors"
	"fmt"
)

// Sentinel errors for scope parsing and enforcement.
var (
	// ErrSyntax indicates a scope string that does not conform to the
	// grammar. Matched by every *SyntaxError.
	ErrSyntax = errors.New("scope: invalid scope string")

	// ErrUnknownOperation indicates an operation name outside the gateway's
	// operation catalog. Matched by every *UnknownOperationError.
	ErrUnknownOperation = errors.New("scope: unknown operation")

	// ErrDenied indicates a call the caller's scope does not permit.
	// Matched by every *DeniedError.
	ErrDenied = errors.New("scope: permission denied")
)

// SyntaxError describes why a scope string failed to parse.
type SyntaxError struct {
	Raw     string // the full scope string as presented
	Segment string // the offending segment, empty when the whole string is at fault
	Reason  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("scope: invalid scope string: segment %q: %s", e.Segment, e.Reason)
	}
	return fmt.Sprintf("scope: invalid scope string: %s", e.Reason)
}

// Is reports whether target is ErrSyntax, enabling errors.Is checks.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// UnknownOperationError indicates an operation name the gateway does not
// map to any permission class.
type UnknownOperationError struct {
	Operation string
}

// Error implements the error interface.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("scope: unknown operation %q", e.Operation)
}

// Is reports whether target is ErrUnknownOperation.
func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// DeniedError describes a scope check that failed. Matched covers the two
// denial shapes: a rule matched the model but lacks the required permission,
// or no rule covers the model at all.
type DeniedError struct {
	Model     string
	Operation string
	Need      Permission
	Matched   bool
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	if !e.Matched {
		return fmt.Sprintf("scope: permission denied: no rule covers model %q (operation %q requires %s)",
			e.Model, e.Operation, e.Need)
	}
	return fmt.Sprintf("scope: permission denied: model %q does not grant %s (operation %q)",
		e.Model, e.Need, e.Operation)
}

// Is reports whether target is ErrDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}
