package config

import "fmt"

// ParseError reports a settings file that did not parse. During a
// live reload the previous settings stay in effect when one surfaces.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("settings %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
