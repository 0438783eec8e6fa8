package bridge

import "errors"

var (
	// ErrStarted is returned by Start when the bridge is already
	// running.
	ErrStarted = errors.New("bridge: already started")

	// ErrNotConnected is returned by buffer operations while no engine
	// session is up, or while another thread holds the session handle.
	ErrNotConnected = errors.New("bridge: engine not connected")
)
