// Package config loads, validates, and watches the bridge settings.
//
// Settings come from three layers: defaults in code, a TOML settings
// file, and GDNVIM_* environment variables, each overriding the one
// before. The file is polled for changes so edits apply without a
// restart.
package config

import (
	"fmt"
	"time"
)

// Settings is the full settings tree.
type Settings struct {
	Engine   EngineConfig   `toml:"engine"`
	Input    InputConfig    `toml:"input"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
	Recovery RecoveryConfig `toml:"recovery"`
	LSP      LSPConfig      `toml:"lsp"`
	Keymap   KeymapConfig   `toml:"keymap"`
}

// EngineConfig configures the engine child process.
type EngineConfig struct {
	// Path is the engine executable. Empty resolves the platform
	// default through $PATH.
	Path string `toml:"path"`

	// Clean starts the engine without user config or plugins.
	Clean bool `toml:"clean"`

	// ExtraArgs are appended to the spawn command line.
	ExtraArgs []string `toml:"extraArgs"`
}

// InputConfig configures key routing.
type InputConfig struct {
	// ChordTimeoutMs abandons an unfinished chord prefix, count, or
	// register selection after this many milliseconds. Range 0 to
	// 10000, default 1000.
	ChordTimeoutMs int `toml:"chordTimeoutMs"`

	// Strict sends every insert-mode key to the engine. The default
	// hybrid mode leaves plain typing with the widget so IME and
	// completion keep working.
	Strict bool `toml:"strict"`
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	// Verbose lowers the log threshold to debug.
	Verbose bool `toml:"verbose"`
}

// UIConfig configures host-side display extras.
type UIConfig struct {
	// KeyOverlay echoes typed key sequences in the host status area.
	KeyOverlay bool `toml:"keyOverlay"`
}

// RecoveryConfig tunes the timeout watchdog behind the engine restart
// dialog.
type RecoveryConfig struct {
	// TimeoutThreshold is how many request timeouts within
	// TimeoutWindowMs open the recovery dialog.
	TimeoutThreshold int `toml:"timeoutThreshold"`

	// TimeoutWindowMs is the sliding accounting window in
	// milliseconds.
	TimeoutWindowMs int `toml:"timeoutWindowMs"`
}

// LSPConfig configures the host language server lookups behind gd
// and K.
type LSPConfig struct {
	// Port is the host language server's TCP port on localhost.
	Port int `toml:"port"`
}

// KeymapConfig configures user key bindings.
type KeymapConfig struct {
	// Script is a Lua file binding key notations to editor actions.
	Script string `toml:"script"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Input:    InputConfig{ChordTimeoutMs: 1000},
		Recovery: RecoveryConfig{TimeoutThreshold: 3, TimeoutWindowMs: 5000},
		LSP:      LSPConfig{Port: 6005},
	}
}

// Normalize clamps out-of-range values to their nearest legal value
// and restores defaults for values that make no sense.
func (s *Settings) Normalize() {
	if s.Input.ChordTimeoutMs < 0 {
		s.Input.ChordTimeoutMs = 0
	}
	if s.Input.ChordTimeoutMs > 10000 {
		s.Input.ChordTimeoutMs = 10000
	}
	if s.Recovery.TimeoutThreshold <= 0 {
		s.Recovery.TimeoutThreshold = 3
	}
	if s.Recovery.TimeoutWindowMs <= 0 {
		s.Recovery.TimeoutWindowMs = 5000
	}
	if s.LSP.Port <= 0 || s.LSP.Port > 65535 {
		s.LSP.Port = 6005
	}
}

// ChordTimeout returns the chord timeout as a duration.
func (s Settings) ChordTimeout() time.Duration {
	return time.Duration(s.Input.ChordTimeoutMs) * time.Millisecond
}

// TimeoutWindow returns the watchdog accounting window as a duration.
func (s Settings) TimeoutWindow() time.Duration {
	return time.Duration(s.Recovery.TimeoutWindowMs) * time.Millisecond
}

// LSPAddr returns the dial address of the host language server.
func (s Settings) LSPAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.LSP.Port)
}
