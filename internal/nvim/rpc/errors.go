package rpc

import (
	"errors"
	"fmt"
)

// Transport errors
var (
	// ErrShutdown is returned when the session has been closed.
	ErrShutdown = errors.New("rpc: session shut down")

	// ErrTimeout is returned when a call exceeds its deadline. Callers
	// count these toward the engine recovery threshold.
	ErrTimeout = errors.New("rpc: call timed out")

	// ErrMalformed is returned when an incoming frame does not match
	// the msgpack-rpc framing rules.
	ErrMalformed = errors.New("rpc: malformed frame")
)

// EngineError is an error response from the engine. Code is the engine's
// error category (0 for exceptions, 1 for validation failures).
type EngineError struct {
	Code    int64
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// AsEngineError extracts an *EngineError from an error chain.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
