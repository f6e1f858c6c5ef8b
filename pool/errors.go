package pool

import "errors"

// Sentinel errors for pool operations.
var (
	// ErrClosed indicates an operation on a pool after Close.
	ErrClosed = errors.New("pool: pool is closed")

	// ErrNilFactory indicates an Acquire call without a session factory.
	ErrNilFactory = errors.New("pool: nil session factory")
)
