package process

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SupervisorConfig tunes restart accounting for the engine process.
type SupervisorConfig struct {
	// Engine is the spawn configuration.
	Engine Config

	// MaxRestarts is the number of restart attempts allowed inside one
	// reset window before the supervisor gives up.
	// Default: 5
	MaxRestarts int

	// InitialBackoff is the delay before the first respawn attempt.
	// Default: 500ms
	InitialBackoff time.Duration

	// MaxBackoff caps the respawn delay.
	// Default: 10 seconds
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to the delay after each failure.
	// Default: 2.0
	BackoffMultiplier float64

	// ResetWindow is how long the engine must stay up for the restart
	// count to reset.
	// Default: 1 minute
	ResetWindow time.Duration
}

// DefaultSupervisorConfig returns the default restart policy.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		MaxRestarts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		ResetWindow:       time.Minute,
	}
}

// ExitEvent describes an engine process exit.
type ExitEvent struct {
	// SessionID identifies the engine session that ended.
	SessionID string

	// State is the final process state.
	State State

	// ExitCode is the process exit code.
	ExitCode int

	// Err is the wait error, if any.
	Err error

	// Expected is true when the exit followed a Stop call.
	Expected bool

	// StderrTail is the engine's recent stderr output.
	StderrTail string
}

// Supervisor owns the engine process lifecycle. It spawns sessions,
// watches for exits, and keeps restart accounting so a crash-looping
// engine backs off instead of respawning hot.
type Supervisor struct {
	cfg SupervisorConfig

	mu           sync.Mutex
	proc         *Process
	sessionID    string
	stopping     bool
	restartCount int
	lastSpawn    time.Time

	onExit func(ExitEvent)
}

// NewSupervisor creates a supervisor with the given policy. Zero config
// fields fall back to defaults.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	def := DefaultSupervisorConfig()
	if cfg.MaxRestarts == 0 {
		cfg.MaxRestarts = def.MaxRestarts
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffMultiplier == 0 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	if cfg.ResetWindow == 0 {
		cfg.ResetWindow = def.ResetWindow
	}
	return &Supervisor{cfg: cfg}
}

// OnExit registers the exit callback. Must be set before Spawn; the
// callback runs on the monitor goroutine.
func (s *Supervisor) OnExit(fn func(ExitEvent)) {
	s.mu.Lock()
	s.onExit = fn
	s.mu.Unlock()
}

// Spawn launches a fresh engine session. Fails with ErrAlreadyRunning
// while a previous session is still alive.
func (s *Supervisor) Spawn() (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != nil && !s.proc.HasExited() {
		return nil, ErrAlreadyRunning
	}

	if !s.lastSpawn.IsZero() && time.Since(s.lastSpawn) > s.cfg.ResetWindow {
		s.restartCount = 0
	}

	p, err := Spawn(s.cfg.Engine)
	if err != nil {
		return nil, err
	}

	s.proc = p
	s.sessionID = uuid.NewString()
	s.stopping = false
	s.lastSpawn = time.Now()

	go s.monitor(p, s.sessionID)
	return p, nil
}

// Current returns the live process, or nil.
func (s *Supervisor) Current() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc != nil && s.proc.HasExited() {
		return nil
	}
	return s.proc
}

// SessionID returns the id of the current engine session.
func (s *Supervisor) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Stop marks the session as ending and waits for the process to exit.
// The rpc session closes the engine's stdin first, which the engine
// takes as its cue to exit; Kill is the escalation when it lingers.
func (s *Supervisor) Stop(timeout time.Duration) error {
	s.mu.Lock()
	p := s.proc
	s.stopping = true
	s.mu.Unlock()

	if p == nil || p.HasExited() {
		return nil
	}

	select {
	case <-p.Done():
		return nil
	case <-time.After(timeout):
	}

	if err := p.Kill(); err != nil {
		return err
	}
	<-p.Done()
	return nil
}

// NextRestart counts a restart attempt and returns the backoff delay to
// apply before it. ok is false once the attempt budget inside the reset
// window is spent.
func (s *Supervisor) NextRestart() (delay time.Duration, attempt int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastSpawn.IsZero() && time.Since(s.lastSpawn) > s.cfg.ResetWindow {
		s.restartCount = 0
	}

	s.restartCount++
	if s.restartCount > s.cfg.MaxRestarts {
		return 0, s.restartCount, false
	}

	delay = CalculateBackoff(
		s.restartCount,
		s.cfg.InitialBackoff,
		s.cfg.MaxBackoff,
		s.cfg.BackoffMultiplier,
	)
	return delay, s.restartCount, true
}

func (s *Supervisor) monitor(p *Process, sessionID string) {
	<-p.Done()

	s.mu.Lock()
	expected := s.stopping
	cb := s.onExit
	if s.proc == p {
		s.proc = nil
	}
	s.mu.Unlock()

	if cb != nil {
		cb(ExitEvent{
			SessionID:  sessionID,
			State:      p.State(),
			ExitCode:   p.ExitCode(),
			Err:        p.ExitError(),
			Expected:   expected,
			StderrTail: p.StderrTail(),
		})
	}
}

// CalculateBackoff computes the exponential delay for a restart attempt.
func CalculateBackoff(attempt int, initial, max time.Duration, multiplier float64) time.Duration {
	if attempt <= 1 {
		return initial
	}

	delay := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}
