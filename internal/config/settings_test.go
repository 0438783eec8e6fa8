package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.Input.ChordTimeoutMs != 1000 {
		t.Errorf("chord timeout = %d, want 1000", s.Input.ChordTimeoutMs)
	}
	if s.Recovery.TimeoutThreshold != 3 {
		t.Errorf("timeout threshold = %d, want 3", s.Recovery.TimeoutThreshold)
	}
	if s.Recovery.TimeoutWindowMs != 5000 {
		t.Errorf("timeout window = %d, want 5000", s.Recovery.TimeoutWindowMs)
	}
	if s.LSP.Port != 6005 {
		t.Errorf("lsp port = %d, want 6005", s.LSP.Port)
	}
	if s.Engine.Path != "" {
		t.Errorf("engine path = %q, want empty", s.Engine.Path)
	}
	if s.Input.Strict {
		t.Error("strict input on by default")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		check  func(*testing.T, Settings)
	}{
		{
			name:   "chord timeout below range",
			mutate: func(s *Settings) { s.Input.ChordTimeoutMs = -50 },
			check: func(t *testing.T, s Settings) {
				if s.Input.ChordTimeoutMs != 0 {
					t.Errorf("chord timeout = %d, want 0", s.Input.ChordTimeoutMs)
				}
			},
		},
		{
			name:   "chord timeout above range",
			mutate: func(s *Settings) { s.Input.ChordTimeoutMs = 99999 },
			check: func(t *testing.T, s Settings) {
				if s.Input.ChordTimeoutMs != 10000 {
					t.Errorf("chord timeout = %d, want 10000", s.Input.ChordTimeoutMs)
				}
			},
		},
		{
			name:   "chord timeout zero is legal",
			mutate: func(s *Settings) { s.Input.ChordTimeoutMs = 0 },
			check: func(t *testing.T, s Settings) {
				if s.Input.ChordTimeoutMs != 0 {
					t.Errorf("chord timeout = %d, want 0", s.Input.ChordTimeoutMs)
				}
			},
		},
		{
			name:   "negative threshold restored",
			mutate: func(s *Settings) { s.Recovery.TimeoutThreshold = -1 },
			check: func(t *testing.T, s Settings) {
				if s.Recovery.TimeoutThreshold != 3 {
					t.Errorf("threshold = %d, want 3", s.Recovery.TimeoutThreshold)
				}
			},
		},
		{
			name:   "port out of range restored",
			mutate: func(s *Settings) { s.LSP.Port = 70000 },
			check: func(t *testing.T, s Settings) {
				if s.LSP.Port != 6005 {
					t.Errorf("port = %d, want 6005", s.LSP.Port)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			s.Normalize()
			tt.check(t, s)
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	s := Default()
	s.Input.ChordTimeoutMs = 750
	s.Recovery.TimeoutWindowMs = 2500

	if got := s.ChordTimeout(); got != 750*time.Millisecond {
		t.Errorf("ChordTimeout() = %v, want 750ms", got)
	}
	if got := s.TimeoutWindow(); got != 2500*time.Millisecond {
		t.Errorf("TimeoutWindow() = %v, want 2.5s", got)
	}
}

func TestLSPAddr(t *testing.T) {
	s := Default()
	if got := s.LSPAddr(); got != "127.0.0.1:6005" {
		t.Errorf("LSPAddr() = %q, want 127.0.0.1:6005", got)
	}

	s.LSP.Port = 7001
	if got := s.LSPAddr(); got != "127.0.0.1:7001" {
		t.Errorf("LSPAddr() = %q, want 127.0.0.1:7001", got)
	}
}
