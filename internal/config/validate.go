package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"gdnvim/internal/nvim/process"
)

// EngineState classifies a configured engine executable.
type EngineState int

const (
	// EngineValid means the executable ran and reported a recognized
	// version banner.
	EngineValid EngineState = iota

	// EngineNotFound means no executable exists at the configured
	// path.
	EngineNotFound

	// EngineNotExecutable means the file exists but cannot be run.
	EngineNotExecutable

	// EngineInvalidOutput means the executable ran but did not answer
	// --version with an engine banner.
	EngineInvalidOutput
)

// String returns the state name.
func (s EngineState) String() string {
	switch s {
	case EngineValid:
		return "valid"
	case EngineNotFound:
		return "not-found"
	case EngineNotExecutable:
		return "not-executable"
	case EngineInvalidOutput:
		return "invalid-output"
	default:
		return "unknown"
	}
}

// EngineStatus is the result of probing an engine executable.
type EngineStatus struct {
	State   EngineState
	Path    string
	Version process.Version
	Detail  string
}

// OK reports whether the probe found a usable engine.
func (s EngineStatus) OK() bool { return s.State == EngineValid }

// Message returns a one-line description for dialogs and logs.
func (s EngineStatus) Message() string {
	switch s.State {
	case EngineValid:
		return fmt.Sprintf("engine %s at %s", s.Version, s.Path)
	case EngineNotFound:
		return fmt.Sprintf("engine not found at %q", s.Path)
	case EngineNotExecutable:
		return fmt.Sprintf("engine at %q is not executable", s.Path)
	default:
		return fmt.Sprintf("%q did not answer --version: %s", s.Path, s.Detail)
	}
}

// ValidateEngine probes an engine executable with --version. It runs
// before the first spawn and again whenever the engine path setting
// changes, so a bad path surfaces as a labeled status instead of a
// spawn failure.
func ValidateEngine(path string) EngineStatus {
	if path == "" {
		path = process.DefaultPath()
	}
	st := EngineStatus{Path: path}

	resolved, err := exec.LookPath(path)
	if errors.Is(err, exec.ErrDot) {
		err = nil
	}
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			st.State = EngineNotExecutable
		default:
			st.State = EngineNotFound
		}
		st.Detail = err.Error()
		return st
	}

	cmd := exec.Command(resolved, "--version")
	cmd.SysProcAttr = sysProcAttr()
	out, err := cmd.Output()
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			st.State = EngineNotFound
		case errors.Is(err, fs.ErrPermission):
			st.State = EngineNotExecutable
		default:
			st.State = EngineInvalidOutput
			var exit *exec.ExitError
			if errors.As(err, &exit) && len(exit.Stderr) > 0 {
				st.Detail = strings.TrimSpace(string(exit.Stderr))
			}
		}
		if st.Detail == "" {
			st.Detail = err.Error()
		}
		return st
	}

	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimSpace(line)
	v, ok := process.ParseVersionBanner(line)
	if !ok {
		st.State = EngineInvalidOutput
		st.Detail = fmt.Sprintf("unrecognized banner %q", line)
		return st
	}

	st.State = EngineValid
	st.Version = v
	return st
}
