package nvim

import "errors"

var (
	// ErrNotConnected short-circuits calls after the session is gone.
	// Callers see it until a restart brings a new session up.
	ErrNotConnected = errors.New("nvim: not connected")

	// ErrHandshake wraps failures during session setup.
	ErrHandshake = errors.New("nvim: handshake failed")

	// ErrBadReply marks an engine reply whose shape does not match the
	// API contract.
	ErrBadReply = errors.New("nvim: unexpected reply shape")
)
