package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"gdnvim/internal/logger"
)

// DefaultPath returns the settings file location under the user's
// config directory.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gdnvim", "settings.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gdnvim", "settings.toml")
}

// Load reads the settings file, layers it over the defaults, applies
// environment overrides, and normalizes the result. A missing file is
// not an error; the defaults apply. On read or parse errors the
// returned settings are the defaults plus environment, usable as-is.
func Load(path string) (Settings, error) {
	s := Default()
	var loadErr error

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		loadErr = fmt.Errorf("reading settings %s: %w", path, err)
	default:
		if uerr := toml.Unmarshal(data, &s); uerr != nil {
			s = Default()
			loadErr = &ParseError{Path: path, Err: uerr}
		}
	}

	applyEnv(&s)
	s.Normalize()
	return s, loadErr
}

// applyEnv layers GDNVIM_* environment variables over the loaded
// settings. Values that fail to parse are ignored.
func applyEnv(s *Settings) {
	if v, ok := os.LookupEnv("GDNVIM_ENGINE_PATH"); ok {
		s.Engine.Path = v
	}
	if v, ok := lookupBool("GDNVIM_ENGINE_CLEAN"); ok {
		s.Engine.Clean = v
	}
	if v, ok := lookupInt("GDNVIM_CHORD_TIMEOUT_MS"); ok {
		s.Input.ChordTimeoutMs = v
	}
	if v, ok := lookupBool("GDNVIM_STRICT_INPUT"); ok {
		s.Input.Strict = v
	}
	if v, ok := lookupBool("GDNVIM_VERBOSE"); ok {
		s.Log.Verbose = v
	}
	if v, ok := lookupBool("GDNVIM_KEY_OVERLAY"); ok {
		s.UI.KeyOverlay = v
	}
	if v, ok := lookupInt("GDNVIM_LSP_PORT"); ok {
		s.LSP.Port = v
	}
	if v, ok := os.LookupEnv("GDNVIM_KEYMAP"); ok {
		s.Keymap.Script = v
	}
}

func lookupBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func lookupInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Store holds the current settings and reloads them when the file
// changes. Change handlers run on the watcher goroutine; subscribers
// hand the new settings off to their own thread.
type Store struct {
	path string
	log  *logger.Logger

	mu       sync.RWMutex
	current  Settings
	handlers []func(Settings)

	watcher *Watcher
}

// NewStore loads the file at path and prepares a watcher for it. A
// parse error leaves the defaults active and is returned so the caller
// can surface it; the store still works and picks the file up once it
// parses.
func NewStore(path string, log *logger.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = logger.Null()
	}

	st := &Store{
		path:    path,
		log:     log.WithComponent("config"),
		watcher: NewWatcher(opts...),
	}

	settings, err := Load(path)
	st.current = settings

	st.watcher.OnChange(st.fileChanged)
	if werr := st.watcher.Watch(path); werr != nil && err == nil {
		err = werr
	}
	return st, err
}

// Start begins watching the settings file for live reload.
func (st *Store) Start() { st.watcher.Start() }

// Close stops the watcher.
func (st *Store) Close() { st.watcher.Stop() }

// Path returns the watched settings file path.
func (st *Store) Path() string { return st.path }

// Current returns the settings in effect.
func (st *Store) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// OnChange registers a handler called with the new settings after
// every successful reload.
func (st *Store) OnChange(fn func(Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.handlers = append(st.handlers, fn)
}

// fileChanged is the watcher callback. A file that no longer parses
// keeps the previous settings in effect; a removed file reverts to
// defaults plus environment.
func (st *Store) fileChanged(ev Event) {
	next, err := Load(st.path)
	if err != nil {
		st.log.Warn("settings reload failed: %v", err)
		return
	}
	if ev.Op == OpRemove {
		st.log.Info("settings file removed, defaults restored")
	} else {
		st.log.Debug("settings reloaded from %s", st.path)
	}

	st.mu.Lock()
	st.current = next
	handlers := make([]func(Settings), len(st.handlers))
	copy(handlers, st.handlers)
	st.mu.Unlock()

	for _, fn := range handlers {
		fn(next)
	}
}
