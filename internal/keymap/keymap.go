// Package keymap loads user key-binding scripts. A script is a Lua
// file that maps key notation to named editor actions through a small
// gdnvim API table; it runs in a sandboxed interpreter with no file,
// shell, or module access. Reloading a script first removes every
// binding the previous run made.
package keymap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"gdnvim/internal/logger"
)

// Binder is the input-router surface a keymap script drives. The
// router implements it.
type Binder interface {
	// Bind maps a single-key notation to a named action.
	Bind(notation, action string) error

	// Unbind removes a binding made with Bind.
	Unbind(notation string) error

	// Do runs a named action; "keys:{notation}" forwards the notation
	// to the engine.
	Do(action string) error

	// Mode returns the mode the engine last reported.
	Mode() string

	// Chord returns the pending multi-key prefix.
	Chord() string

	// CountBuffer returns the digits of a pending count prefix.
	CountBuffer() string
}

// Keymap owns one sandboxed Lua state and the bindings its current
// script has registered. Binder calls happen on the Lua goroutine
// while a load runs; the caller sequences loads against its own use
// of the router.
type Keymap struct {
	binder Binder
	log    *logger.Logger
	exec   *executor

	mu    sync.Mutex
	path  string
	bound []string
}

// New builds a Keymap over the binder and starts its script runner.
func New(binder Binder, log *logger.Logger) *Keymap {
	if log == nil {
		log = logger.Null()
	}
	k := &Keymap{
		binder: binder,
		log:    log.WithComponent("keymap"),
	}

	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(l)
	k.register(l)
	k.exec = newExecutor(l)
	return k
}

// openSafeLibraries opens the side-effect-free parts of the Lua
// standard library and removes the base functions that load code from
// outside the script.
func openSafeLibraries(l *lua.LState) {
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)

	// io, os, debug, and package are never opened; require does not
	// exist without package. These four reach back into the chunk
	// loader.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		l.SetGlobal(name, lua.LNil)
	}
}

// Load runs the keymap script at path, replacing the bindings of any
// previously loaded script.
func (k *Keymap) Load(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading keymap %s: %w", path, err)
	}
	if err := k.load(ctx, path, string(data)); err != nil {
		return err
	}

	k.mu.Lock()
	k.path = path
	k.mu.Unlock()
	k.log.Info("keymap loaded from %s", path)
	return nil
}

// LoadString runs script source directly.
func (k *Keymap) LoadString(ctx context.Context, src string) error {
	return k.load(ctx, "keymap", src)
}

// load compiles and runs one script on the Lua goroutine. The compile
// happens first so a script with a syntax error leaves the previous
// bindings untouched; a script that fails mid-run keeps the bindings
// it made before the error.
func (k *Keymap) load(ctx context.Context, name, src string) error {
	return k.exec.execute(ctx, func(l *lua.LState) error {
		fn, err := l.Load(strings.NewReader(src), name)
		if err != nil {
			return &ScriptError{Path: name, Err: err}
		}

		k.resetBindings()

		l.Push(fn)
		if err := l.PCall(0, lua.MultRet, nil); err != nil {
			return &ScriptError{Path: name, Err: err}
		}
		return nil
	})
}

// resetBindings removes every binding the previous script made.
func (k *Keymap) resetBindings() {
	k.mu.Lock()
	bound := k.bound
	k.bound = nil
	k.mu.Unlock()

	for _, notation := range bound {
		if err := k.binder.Unbind(notation); err != nil {
			k.log.Warn("unbind %s: %v", notation, err)
		}
	}
}

func (k *Keymap) recordBinding(notation string) {
	k.mu.Lock()
	k.bound = append(k.bound, notation)
	k.mu.Unlock()
}

func (k *Keymap) forgetBinding(notation string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i, n := range k.bound {
		if n == notation {
			k.bound = append(k.bound[:i], k.bound[i+1:]...)
			return
		}
	}
}

// Path returns the file the current bindings came from, or "" when
// the script was loaded from a string.
func (k *Keymap) Path() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.path
}

// Bindings returns the notations the current script has bound.
func (k *Keymap) Bindings() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.bound))
	copy(out, k.bound)
	return out
}

// Close shuts the script runner down. The script's bindings stay in
// the router.
func (k *Keymap) Close() {
	k.exec.close()
}
