package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the state of the engine process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Config describes how to launch the engine executable.
type Config struct {
	// Path is the engine executable. Empty means the platform default
	// resolved through PATH.
	Path string

	// Clean skips the user's engine config and plugins.
	Clean bool

	// ExtraArgs are appended after the embed flags.
	ExtraArgs []string

	// Env entries are appended to the inherited environment.
	Env []string

	// Dir is the working directory for the engine process.
	Dir string
}

// DefaultPath returns the platform default engine executable name.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		return "nvim.exe"
	}
	return "nvim"
}

// args builds the engine command line. -n keeps swap files off; a
// headless embed session would otherwise hit E325 attention prompts on
// files the host has open.
func (c Config) args() []string {
	args := []string{"--embed", "--headless", "-n"}
	if c.Clean {
		args = append(args, "--clean")
	}
	return append(args, c.ExtraArgs...)
}

// Process is a running engine child process.
//
// Process wraps an exec.Cmd with lifecycle management, exit tracking,
// and access to the rpc pipes. It is safe for concurrent use.
type Process struct {
	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Stdin is the engine's rpc input. The rpc session owns it and
	// closes it on shutdown, which the engine observes as EOF.
	Stdin io.WriteCloser

	// Stdout is the engine's rpc output.
	Stdout io.ReadCloser

	// Started is the time the process was started.
	Started time.Time

	stderr *stderrTail

	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32
	exitErr  error
	mu       sync.RWMutex
	waitOnce sync.Once
}

// Spawn launches the engine with the embed flags and piped stdio.
func Spawn(cfg Config) (*Process, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath()
	}

	cmd := exec.Command(path, cfg.args()...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.SysProcAttr = sysProcAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}

	p := newProcess(cmd)
	p.Stdin = stdin
	p.Stdout = stdout

	if err := p.start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, path, err)
	}

	go func() {
		_, _ = io.Copy(p.stderr, stderr)
	}()

	return p, nil
}

// newProcess wraps a command that has not been started yet.
func newProcess(cmd *exec.Cmd) *Process {
	p := &Process{
		Cmd:    cmd,
		stderr: newStderrTail(4096),
		done:   make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1)
	return p
}

// start starts the process and begins tracking it.
func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrAlreadyRunning
	}

	if err := p.Cmd.Start(); err != nil {
		return err
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.waitLoop()
	return nil
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code, or -1 while running.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns any error from waiting on the process.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// HasExited returns true once the process has exited or was killed.
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// PID returns the process id, or -1 if not started.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// StderrTail returns the most recent engine stderr output. Useful in
// spawn and handshake failure diagnostics.
func (p *Process) StderrTail() string {
	return p.stderr.String()
}

// Kill forcibly terminates the process.
func (p *Process) Kill() error {
	if !p.IsRunning() {
		return ErrNotRunning
	}
	if p.Cmd.Process == nil {
		return ErrNotRunning
	}
	return p.Cmd.Process.Kill()
}

// waitLoop waits for the process to exit and updates state.
func (p *Process) waitLoop() {
	p.waitOnce.Do(func() {
		err := p.Cmd.Wait()

		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
					if status.Signaled() {
						state = StateKilled
					}
				}
			} else {
				exitCode = -1
			}
		}

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)
	})
}

// Runtime returns how long the process has been alive, or its total
// runtime after exit.
func (p *Process) Runtime() time.Duration {
	if p.Started.IsZero() {
		return 0
	}
	return time.Since(p.Started)
}

// stderrTail is a bounded buffer keeping the most recent stderr bytes.
type stderrTail struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newStderrTail(max int) *stderrTail {
	return &stderrTail{max: max}
}

func (t *stderrTail) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, b...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(b), nil
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
