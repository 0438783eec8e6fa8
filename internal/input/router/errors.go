package router

import "errors"

var (
	// ErrUnknownAction is returned by Bind and Do for an action name
	// that is not in the action table.
	ErrUnknownAction = errors.New("router: unknown action")

	// ErrBadBinding is returned by Bind when the notation does not
	// parse to exactly one key.
	ErrBadBinding = errors.New("router: binding must name a single key")
)
