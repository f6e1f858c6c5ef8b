package config

import "errors"

var (
	// ErrKeyTooShort indicates an encryption key below the codec minimum.
	ErrKeyTooShort = errors.New("config: encryption key too short")

	// ErrMissingListenAddr indicates an explicitly blank listen address.
	ErrMissingListenAddr = errors.New("config: listen address is empty")

	// ErrInvalidDuration indicates a zero or negative duration setting.
	ErrInvalidDuration = errors.New("config: duration must be positive")
)
