// Package app assembles the engine bridge, the settings store, the
// language client, and the user keymap into a running application,
// and applies settings changes to all of them while it runs.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gdnvim/internal/bridge"
	"gdnvim/internal/config"
	"gdnvim/internal/host"
	"gdnvim/internal/input/key"
	"gdnvim/internal/input/router"
	"gdnvim/internal/keymap"
	"gdnvim/internal/logger"
	"gdnvim/internal/lsp"
	"gdnvim/internal/nvim/process"
)

// framePeriod is the idle cadence of the Run loop. Input is handled
// as it arrives; the ticker only paces the bridge poll and redraws.
const framePeriod = time.Second / 60

// Shell is the host editor surface Run drives: the bridge-facing
// widget, actions, and dialogs, plus the input pump and the frame
// renderer. The terminal demo host implements it.
type Shell interface {
	// Init takes over the display; Fini releases it. Run calls Fini
	// on every exit path after a successful Init.
	Init() error
	Fini()

	// Widget, Actions, and Dialogs are the surfaces handed to the
	// bridge. They must be ready once Init returns.
	Widget() host.TextWidget
	Actions() host.Actions
	Dialogs() host.Dialogs

	// Keys yields translated key input. Run treats a close as quit.
	Keys() <-chan key.Event

	// Apply performs the shell's native handling of a routed key and
	// returns the widget notifications the handling produced. A key
	// the router left unconsumed edits the widget the way the
	// embedding editor's own text widget would; a consumed key
	// usually returns nil.
	Apply(ev key.Event, res router.Result) []host.Event

	// Notes yields widget notifications that did not originate with
	// the bridge or with Apply: mouse activity, focus changes,
	// resizes.
	Notes() <-chan host.Event

	// Done is closed when the shell wants the application gone, for
	// example after the last tab closes.
	Done() <-chan struct{}

	// Render draws one frame.
	Render()
}

// Application is the root object. It owns the settings store, the
// engine bridge, the language client, and the user keymap, and it
// rewires them when the settings file changes.
//
// HandleKey, OnEvent, and Frame belong to the host's frame thread,
// like the bridge methods they feed. Run supplies that thread; a host
// that embeds the Application calls them from its own loop instead.
// An Application runs once: New, Start, frames, Stop.
type Application struct {
	opts Options
	root *logger.Logger
	log  *logger.Logger

	store   *config.Store
	km      *keymap.Keymap
	logFile *os.File

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	br      *bridge.Bridge
	lc      *lsp.Client
	widget  host.TextWidget
	actions host.Actions
	dialogs host.Dialogs
	engine  config.EngineStatus

	// applied is the settings in effect, owned by the frame thread.
	// The watcher goroutine parks reloads in pending; Frame picks
	// them up.
	applied config.Settings
	pending atomic.Pointer[config.Settings]

	running atomic.Bool
}

// Status is the application state a host statusline renders.
type Status struct {
	// Mode is the engine mode the router last saw, "" while the
	// engine is down. ModeLabel is the display name for it, "NORMAL"
	// through "V-BLOCK".
	Mode      string
	ModeLabel string

	// Chord and Count are the pending key prefix and count digits.
	Chord string
	Count string

	// Prompt is the visible command-line or search buffer, with its
	// leading : / ?, or "" outside those sub-modes.
	Prompt string

	// Recording is the register a macro is recording into, 0 when
	// idle.
	Recording rune

	// Connected reports a live engine session.
	Connected bool

	// EngineVersion is the version learned during the handshake.
	EngineVersion process.Version

	// Engine is the outcome of the last executable probe.
	Engine config.EngineStatus
}

// New builds an application from the options: logger, settings store,
// language client, and keymap runner. The engine is not touched until
// Start.
func New(opts Options) (*Application, error) {
	opts.normalize()
	a := &Application{opts: opts}

	out := io.Writer(os.Stderr)
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, &InitError{Component: "log", Err: err}
		}
		a.logFile = f
		out = f
	}
	a.root = logger.New(logger.Config{Level: logger.LevelInfo, Output: out, Prefix: "gdnvim"})
	logger.SetDefault(a.root)
	a.log = a.root.WithComponent("app")

	store, err := config.NewStore(opts.ConfigPath, a.root)
	if err != nil {
		a.log.Warn("settings: %v", err)
	}
	a.store = store
	a.applied = a.effective(store.Current())
	a.root.SetLevel(a.logLevel(a.applied))

	a.lc = a.newLSP(a.applied)
	a.km = keymap.New(&routerBinder{app: a}, a.root)
	store.OnChange(a.settingsChanged)

	a.log.Debug("application built, settings from %s", store.Path())
	return a, nil
}

// SetHost installs the editor surfaces the bridge binds to. It must
// be called before Start; Run wires its shell through here.
func (a *Application) SetHost(w host.TextWidget, actions host.Actions, dialogs host.Dialogs) error {
	if a.running.Load() {
		return ErrAlreadyRunning
	}
	a.mu.Lock()
	a.widget, a.actions, a.dialogs = w, actions, dialogs
	a.mu.Unlock()
	return nil
}

// Start brings the application up: the settings watcher, the engine
// probe, the bridge, the keymap script, and the startup files. An
// engine that fails its probe is reported and left down; a later
// settings change retries it.
func (a *Application) Start(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	widget, actions, _ := a.host()
	if widget == nil {
		a.running.Store(false)
		return ErrNoWidget
	}
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.applied = a.effective(a.store.Current())
	a.root.SetLevel(a.logLevel(a.applied))
	a.store.Start()

	if err := a.startBridge(a.applied); err != nil {
		a.reportEngine(err)
	} else {
		a.loadKeymap(a.applied)
	}

	for _, f := range a.opts.Files {
		actions.OpenFile(f)
	}
	return nil
}

// Stop tears everything down in reverse order: keymap runner, bridge
// and engine, language client, settings watcher. Stop is final.
func (a *Application) Stop() error {
	if !a.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.km.Close()

	var err error
	if b := a.takeBridge(); b != nil {
		err = WrapError(b.Stop(), "stopping engine")
	}
	if c := a.LSP(); c != nil {
		_ = c.Close()
	}
	a.store.Close()

	a.log.Info("stopped")
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
	return err
}

// Run is the whole lifecycle on the calling goroutine: shell up,
// application started, events and frames until the context ends or
// the shell quits, everything stopped. A shell-initiated exit
// surfaces as ErrQuit.
func (a *Application) Run(ctx context.Context, sh Shell) error {
	if err := sh.Init(); err != nil {
		return &InitError{Component: "shell", Err: err}
	}
	defer sh.Fini()

	if err := a.SetHost(sh.Widget(), sh.Actions(), sh.Dialogs()); err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	tick := time.NewTicker(framePeriod)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sh.Done():
			return ErrQuit
		case ev, ok := <-sh.Keys():
			if !ok {
				return ErrQuit
			}
			for _, note := range sh.Apply(ev, a.HandleKey(ev)) {
				a.OnEvent(note)
			}
			sh.Render()
		case ev := <-sh.Notes():
			a.OnEvent(ev)
		case <-tick.C:
			a.Frame()
			sh.Render()
		}
	}
}

// HandleKey routes one key event from the host's input hook. With the
// engine down every key stays with the widget.
func (a *Application) HandleKey(ev key.Event) router.Result {
	if b := a.Bridge(); b != nil {
		return b.HandleKey(ev)
	}
	return router.Result{}
}

// OnEvent relays one widget notification to the bridge.
func (a *Application) OnEvent(ev host.Event) {
	if b := a.Bridge(); b != nil {
		b.OnEvent(ev)
	}
}

// Frame advances the application by one host frame: queued settings
// reloads first, then the bridge poll.
func (a *Application) Frame() {
	if !a.running.Load() {
		return
	}
	if p := a.pending.Swap(nil); p != nil {
		a.applySettings(a.effective(*p))
	}
	if b := a.Bridge(); b != nil {
		b.Poll()
	}
}

// SwitchFile rebinds the engine to the file the host now shows. The
// host calls it after a tab or scene switch, once the widget holds
// the new content.
func (a *Application) SwitchFile(path string) {
	b := a.Bridge()
	if b == nil {
		return
	}
	if err := b.SwitchBuffer(path); err != nil {
		a.log.Warn("buffer switch: %v", err)
	}
}

// ReloadFile re-reads the bound file from disk on the engine side and
// mirrors it into the widget. The host calls it after an external
// change was accepted.
func (a *Application) ReloadFile() {
	b := a.Bridge()
	if b == nil {
		return
	}
	if err := b.ReloadCurrent(); err != nil {
		a.log.Warn("disk reload: %v", err)
	}
}

// Bridge returns the live engine bridge, or nil while the engine is
// down.
func (a *Application) Bridge() *bridge.Bridge {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.br
}

// LSP returns the current language client.
func (a *Application) LSP() *lsp.Client {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lc
}

// Keymap returns the user keymap runner.
func (a *Application) Keymap() *keymap.Keymap { return a.km }

// Store returns the settings store.
func (a *Application) Store() *config.Store { return a.store }

// Settings returns the settings in effect. Like Frame, it belongs to
// the frame thread; other goroutines read the store instead.
func (a *Application) Settings() config.Settings { return a.applied }

// EngineStatus returns the outcome of the last engine probe.
func (a *Application) EngineStatus() config.EngineStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine
}

// Running reports whether the application is between Start and Stop.
func (a *Application) Running() bool { return a.running.Load() }

// Status snapshots what a statusline shows: mode, pending input, and
// engine health.
func (a *Application) Status() Status {
	a.mu.Lock()
	st := Status{Engine: a.engine}
	b := a.br
	a.mu.Unlock()

	if b != nil {
		r := b.Router()
		st.Mode = r.Mode()
		st.ModeLabel = r.StatusName()
		st.Chord = r.Chord()
		st.Count = r.CountBuffer()
		st.Prompt = r.PromptText()
		st.Recording = r.RecordingRegister()
		st.Connected = b.Connected()
		st.EngineVersion = b.EngineVersion()
	}
	return st
}

// host returns the editor surfaces installed by SetHost.
func (a *Application) host() (host.TextWidget, host.Actions, host.Dialogs) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget, a.actions, a.dialogs
}

func (a *Application) setBridge(b *bridge.Bridge) {
	a.mu.Lock()
	a.br = b
	a.mu.Unlock()
}

func (a *Application) takeBridge() *bridge.Bridge {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.br
	a.br = nil
	return b
}

// newLSP builds a language client for the configured server port.
func (a *Application) newLSP(s config.Settings) *lsp.Client {
	c := lsp.New(lsp.Config{Addr: s.LSPAddr(), Root: a.opts.Root, Logger: a.root})
	c.SetSource(a.widgetSource)
	return c
}

// widgetSource hands the language client the widget's unsaved text
// when it asks about the file the bridge currently mirrors.
func (a *Application) widgetSource(path string) (string, bool) {
	a.mu.Lock()
	b, w := a.br, a.widget
	a.mu.Unlock()
	if b == nil || w == nil || path == "" || path != b.CurrentPath() {
		return "", false
	}
	return w.Text(), true
}

// startBridge probes the configured executable and, when the probe
// passes, brings a bridge up on it. The probe outcome is kept for the
// statusline either way.
func (a *Application) startBridge(s config.Settings) error {
	st := config.ValidateEngine(s.Engine.Path)
	a.mu.Lock()
	a.engine = st
	a.mu.Unlock()
	if !st.OK() {
		return errors.New(st.Message())
	}
	a.log.Info("%s", st.Message())

	widget, actions, dialogs := a.host()
	b := bridge.New(bridge.Config{
		Engine: process.Config{
			Path:      s.Engine.Path,
			Clean:     s.Engine.Clean,
			ExtraArgs: s.Engine.ExtraArgs,
			Dir:       a.opts.Root,
		},
		ChordTimeout:     s.ChordTimeout(),
		TimeoutThreshold: s.Recovery.TimeoutThreshold,
		TimeoutWindow:    s.TimeoutWindow(),
		HostVersion:      a.opts.Version,
		Logger:           a.root,
	}, widget, actions, dialogs)
	b.Router().SetStrict(s.Input.Strict)
	b.SetResolver(a.LSP())

	if err := b.Start(a.ctx); err != nil {
		return err
	}
	a.setBridge(b)
	return nil
}

// reportEngine surfaces a failed engine start without taking the
// application down; the widget keeps working on its own.
func (a *Application) reportEngine(err error) {
	a.log.Error("engine unavailable: %v", err)
	if _, actions, _ := a.host(); actions != nil {
		actions.Echo("Engine unavailable: " + err.Error())
	}
}

// settingsChanged runs on the watcher goroutine; the new settings are
// parked for the next Frame so every apply happens on the frame
// thread.
func (a *Application) settingsChanged(s config.Settings) {
	a.pending.Store(&s)
}

// applySettings moves the application from the applied settings to
// next. Cheap knobs retune in place; an engine or server change
// rebuilds the component behind it.
func (a *Application) applySettings(next config.Settings) {
	prev := a.applied
	a.applied = next

	a.root.SetLevel(a.logLevel(next))

	if b := a.Bridge(); b != nil {
		r := b.Router()
		r.SetChordTimeout(next.ChordTimeout())
		r.SetStrict(next.Input.Strict)
		b.SetRecovery(next.Recovery.TimeoutThreshold, next.TimeoutWindow())
	}

	if next.LSP.Port != prev.LSP.Port {
		a.swapLSP(next)
	}

	if engineChanged(prev.Engine, next.Engine) || a.Bridge() == nil {
		a.restartEngine(next)
	} else if next.Keymap.Script != prev.Keymap.Script {
		a.loadKeymap(next)
	}

	a.log.Debug("settings applied")
}

// restartEngine tears down any live bridge and brings one up on the
// next settings. The keymap script rebinds into the fresh router.
func (a *Application) restartEngine(next config.Settings) {
	if old := a.takeBridge(); old != nil {
		a.log.Info("engine settings changed, restarting engine")
		if err := old.Stop(); err != nil {
			a.log.Warn("engine stop: %v", err)
		}
	}
	if err := a.startBridge(next); err != nil {
		a.reportEngine(err)
		return
	}
	a.loadKeymap(next)
}

// swapLSP replaces the language client when the server port moves.
func (a *Application) swapLSP(next config.Settings) {
	fresh := a.newLSP(next)
	a.mu.Lock()
	old := a.lc
	a.lc = fresh
	a.mu.Unlock()

	if b := a.Bridge(); b != nil {
		b.SetResolver(fresh)
	}
	if old != nil {
		_ = old.Close()
	}
	a.log.Info("language client now at %s", next.LSPAddr())
}

// loadKeymap runs the configured script, or clears script bindings
// when the path setting was emptied. A failed script is reported and
// leaves bindings per the load semantics: a syntax error keeps the
// previous set, a mid-run error keeps what ran before it.
func (a *Application) loadKeymap(s config.Settings) {
	var err error
	if s.Keymap.Script == "" {
		if len(a.km.Bindings()) == 0 {
			return
		}
		err = a.km.LoadString(a.ctx, "")
	} else {
		err = a.km.Load(a.ctx, s.Keymap.Script)
	}
	if err != nil {
		a.log.Warn("keymap: %v", err)
		if _, actions, _ := a.host(); actions != nil {
			actions.Echo("Keymap error: " + err.Error())
		}
	}
}

// routerBinder adapts the live router to the keymap's Binder. The
// bridge, and with it the router, is rebuilt on an engine restart, so
// the keymap holds this stable indirection instead of a router
// handle.
type routerBinder struct {
	app *Application
}

func (rb *routerBinder) live() (*router.Router, error) {
	b := rb.app.Bridge()
	if b == nil {
		return nil, ErrEngineDown
	}
	return b.Router(), nil
}

func (rb *routerBinder) Bind(notation, action string) error {
	r, err := rb.live()
	if err != nil {
		return err
	}
	return r.Bind(notation, action)
}

func (rb *routerBinder) Unbind(notation string) error {
	r, err := rb.live()
	if err != nil {
		return err
	}
	return r.Unbind(notation)
}

func (rb *routerBinder) Do(action string) error {
	r, err := rb.live()
	if err != nil {
		return err
	}
	return r.Do(action)
}

func (rb *routerBinder) Mode() string {
	if r, err := rb.live(); err == nil {
		return r.Mode()
	}
	return ""
}

func (rb *routerBinder) Chord() string {
	if r, err := rb.live(); err == nil {
		return r.Chord()
	}
	return ""
}

func (rb *routerBinder) CountBuffer() string {
	if r, err := rb.live(); err == nil {
		return r.CountBuffer()
	}
	return ""
}
