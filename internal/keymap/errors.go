package keymap

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the script runner has been shut down.
	ErrClosed = errors.New("keymap: closed")
)

// ScriptError reports a keymap script that failed to compile or run.
// Err carries the Lua error with its chunk name and line.
type ScriptError struct {
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("keymap script %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
