package process

import "errors"

var (
	// ErrSpawn wraps failures to launch the engine executable.
	ErrSpawn = errors.New("engine spawn failed")

	// ErrAlreadyRunning is returned when a spawn is requested while an
	// engine process is still alive.
	ErrAlreadyRunning = errors.New("engine already running")

	// ErrNotRunning is returned for operations that need a live process.
	ErrNotRunning = errors.New("engine not running")

	// ErrNotAnEngine is returned when the configured executable exists
	// but does not identify itself as the engine.
	ErrNotAnEngine = errors.New("executable is not the engine")
)
