package health

import "errors"

var (
	// ErrCheckFailed indicates a checker found its component unusable.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a check did not finish within its deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
