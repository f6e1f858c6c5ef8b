package broker

import "errors"

// Construction and argument errors.
var (
	// ErrNilDialer indicates Config.Dialer was nil.
	ErrNilDialer = errors.New("broker: nil dialer")

	// ErrNilPool indicates Config.Pool was nil.
	ErrNilPool = errors.New("broker: nil session pool")

	// ErrEmptyModel indicates a call without a target model.
	ErrEmptyModel = errors.New("broker: model is required")
)
