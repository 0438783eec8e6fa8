package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gdnvim/internal/config"
	"gdnvim/internal/host"
	"gdnvim/internal/input/key"
	"gdnvim/internal/input/router"
)

// testWidget is a minimal in-memory TextWidget. App tests never reach
// folds or wrap geometry.
type testWidget struct {
	lines        []string
	caretLine    int
	caretCol     int
	firstVisible int
}

func newTestWidget(lines ...string) *testWidget {
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &testWidget{lines: lines}
}

func (w *testWidget) Text() string        { return strings.Join(w.lines, "\n") }
func (w *testWidget) SetText(text string) { w.lines = strings.Split(text, "\n") }

func (w *testWidget) Line(idx int) string {
	if idx < 0 || idx >= len(w.lines) {
		return ""
	}
	return w.lines[idx]
}

func (w *testWidget) SetLine(idx int, text string) {
	if idx >= 0 && idx < len(w.lines) {
		w.lines[idx] = text
	}
}

func (w *testWidget) InsertLine(idx int, text string) {
	if idx < 0 || idx > len(w.lines) {
		return
	}
	w.lines = append(w.lines[:idx], append([]string{text}, w.lines[idx:]...)...)
}

func (w *testWidget) RemoveLine(idx int) {
	if idx >= 0 && idx < len(w.lines) && len(w.lines) > 1 {
		w.lines = append(w.lines[:idx], w.lines[idx+1:]...)
	}
}

func (w *testWidget) LineCount() int                { return len(w.lines) }
func (w *testWidget) Caret() (int, int)             { return w.caretLine, w.caretCol }
func (w *testWidget) SetCaret(line, col int)        { w.caretLine, w.caretCol = line, col }
func (w *testWidget) Select(int, int, int, int)     {}
func (w *testWidget) Deselect()                     {}
func (w *testWidget) HasSelection() bool            { return false }
func (w *testWidget) FirstVisibleLine() int         { return w.firstVisible }
func (w *testWidget) SetFirstVisibleLine(line int)  { w.firstVisible = line }
func (w *testWidget) VisibleLineCount() int         { return 10 }
func (w *testWidget) CenterOnCaret()                {}
func (w *testWidget) CanFold(int) bool              { return false }
func (w *testWidget) IsFolded(int) bool             { return false }
func (w *testWidget) Fold(int)                      {}
func (w *testWidget) Unfold(int)                    {}
func (w *testWidget) ToggleFold(int)                {}
func (w *testWidget) FoldAll()                      {}
func (w *testWidget) UnfoldAll()                    {}
func (w *testWidget) WrapCount(int) int             { return 1 }
func (w *testWidget) CaretWrapIndex() int           { return 0 }
func (w *testWidget) WrapSegments(line int) []string { return []string{w.Line(line)} }

type testActions struct {
	opened []string
	echoes []string
}

func (a *testActions) OpenFile(path string) { a.opened = append(a.opened, path) }
func (a *testActions) OpenURL(string)       {}
func (a *testActions) QuickOpen()           {}
func (a *testActions) Save()                {}
func (a *testActions) SaveAll()             {}
func (a *testActions) CloseTab(bool)        {}
func (a *testActions) CloseAllTabs(bool)    {}
func (a *testActions) NextTab()             {}
func (a *testActions) PrevTab()             {}
func (a *testActions) Tabs() []string       { return nil }
func (a *testActions) CurrentFile() string  { return "" }
func (a *testActions) ReloadFromDisk()      {}
func (a *testActions) ShowHelp(string)      {}
func (a *testActions) Echo(msg string)      { a.echoes = append(a.echoes, msg) }
func (a *testActions) Print(string)         {}

func (a *testActions) lastEcho() string {
	if len(a.echoes) == 0 {
		return ""
	}
	return a.echoes[len(a.echoes)-1]
}

type testDialogs struct {
	restartAnswer bool
	reloadAnswer  bool
}

func (d *testDialogs) AskRestart(string) bool { return d.restartAnswer }
func (d *testDialogs) AskReload(string) bool  { return d.reloadAnswer }

// scratchOptions points every path at the test's scratch directory: a
// settings file naming a nonexistent engine, and a log file. The
// engine probe fails, so the application runs in its engine-down
// state with the widget side fully alive.
func scratchOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.toml")
	engine := filepath.Join(dir, "missing-nvim")
	data := "[engine]\npath = " + strconv.Quote(engine) + "\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return Options{
		ConfigPath: cfgPath,
		Root:       dir,
		LogPath:    filepath.Join(dir, "gdnvim.log"),
		Version:    "test",
	}
}

type rig struct {
	a       *Application
	widget  *testWidget
	actions *testActions
	dialogs *testDialogs
}

func newRig(t *testing.T, opts Options) *rig {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := &rig{a: a, widget: newTestWidget(""), actions: &testActions{}, dialogs: &testDialogs{}}
	if err := a.SetHost(r.widget, r.actions, r.dialogs); err != nil {
		t.Fatalf("SetHost: %v", err)
	}
	t.Cleanup(func() {
		if r.a.Running() {
			_ = r.a.Stop()
		} else if r.a.logFile != nil {
			_ = r.a.logFile.Close()
		}
	})
	return r
}

func (r *rig) start(t *testing.T) {
	t.Helper()
	if err := r.a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestNewAppliesOptionOverrides(t *testing.T) {
	opts := scratchOptions(t)
	opts.EnginePath = "/opt/custom/nvim"
	r := newRig(t, opts)

	s := r.a.Settings()
	if s.Engine.Path != "/opt/custom/nvim" {
		t.Errorf("engine path = %q, want the option override", s.Engine.Path)
	}
	if s.Input.ChordTimeoutMs != 1000 {
		t.Errorf("chord timeout = %d, want normalized default 1000", s.Input.ChordTimeoutMs)
	}
	if got := r.a.Store().Path(); got != opts.ConfigPath {
		t.Errorf("store path = %q, want %q", got, opts.ConfigPath)
	}
}

func TestLifecycleErrors(t *testing.T) {
	opts := scratchOptions(t)
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if a.Running() {
			_ = a.Stop()
		}
	})

	if err := a.Start(context.Background()); !errors.Is(err, ErrNoWidget) {
		t.Fatalf("Start without host = %v, want ErrNoWidget", err)
	}
	if a.Running() {
		t.Fatal("Running() = true after refused start")
	}

	widget, actions, dialogs := newTestWidget(""), &testActions{}, &testDialogs{}
	if err := a.SetHost(widget, actions, dialogs); err != nil {
		t.Fatalf("SetHost: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}
	if err := a.SetHost(widget, actions, dialogs); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("SetHost while running = %v, want ErrAlreadyRunning", err)
	}

	if err := a.Stop(); err != nil {
		t.Errorf("Stop = %v, want nil with the engine down", err)
	}
	if err := a.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop = %v, want ErrNotRunning", err)
	}

	data, err := os.ReadFile(opts.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "stopped") {
		t.Error("log file missing the shutdown line")
	}
}

func TestStartReportsMissingEngine(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	r.start(t)

	if got := r.actions.lastEcho(); !strings.HasPrefix(got, "Engine unavailable") {
		t.Errorf("echo = %q, want engine-unavailable report", got)
	}
	if r.a.Bridge() != nil {
		t.Error("Bridge() != nil with a failed probe")
	}

	st := r.a.EngineStatus()
	if st.State != config.EngineNotFound {
		t.Errorf("engine state = %v, want not-found", st.State)
	}

	status := r.a.Status()
	if status.Connected {
		t.Error("Status().Connected = true with the engine down")
	}
	if status.Mode != "" {
		t.Errorf("Status().Mode = %q, want empty", status.Mode)
	}
	if status.Engine.State != config.EngineNotFound {
		t.Errorf("Status().Engine.State = %v, want not-found", status.Engine.State)
	}
}

func TestStartOpensFiles(t *testing.T) {
	opts := scratchOptions(t)
	opts.Files = []string{"player.gd", "enemy.gd"}
	r := newRig(t, opts)
	r.start(t)

	if len(r.actions.opened) != 2 || r.actions.opened[0] != "player.gd" || r.actions.opened[1] != "enemy.gd" {
		t.Errorf("opened = %v, want the startup files in order", r.actions.opened)
	}
}

func TestEngineDownLeavesWidgetAlone(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	r.start(t)

	res := r.a.HandleKey(key.NewEvent(key.KeyRune, 'i', 0))
	if res.Consumed || res.Route != router.RouteNone {
		t.Errorf("HandleKey = %+v, want unconsumed with the engine down", res)
	}

	// None of the frame-thread entry points may blow up without a
	// bridge behind them.
	r.a.OnEvent(host.Event{Kind: host.EventTextChanged})
	r.a.Frame()
	r.a.SwitchFile("scripts/foo.gd")

	if _, ok := r.a.widgetSource("scripts/foo.gd"); ok {
		t.Error("widgetSource offered text with no bridge bound")
	}
}

func TestSettingsReloadRetriesEngine(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	r.start(t)
	if n := len(r.actions.echoes); n != 1 {
		t.Fatalf("echoes after start = %d, want 1", n)
	}

	other := filepath.Join(t.TempDir(), "other-missing-nvim")
	next := config.Default()
	next.Engine.Path = other

	r.a.settingsChanged(next)
	r.a.Frame()

	if got := r.a.Settings().Engine.Path; got != other {
		t.Errorf("applied engine path = %q, want %q", got, other)
	}
	st := r.a.EngineStatus()
	if st.State != config.EngineNotFound || st.Path != other {
		t.Errorf("engine status = %+v, want a fresh probe of %q", st, other)
	}
	if n := len(r.actions.echoes); n != 2 {
		t.Errorf("echoes = %d, want a second engine report", n)
	}
}

func TestVerboseSettingRetunesLogging(t *testing.T) {
	opts := scratchOptions(t)
	r := newRig(t, opts)
	r.start(t)

	next := config.Default()
	next.Engine.Path = filepath.Join(opts.Root, "missing-nvim")
	next.Log.Verbose = true
	r.a.settingsChanged(next)
	r.a.Frame()

	data, err := os.ReadFile(opts.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "settings applied") {
		t.Error("debug line missing after verbose was enabled")
	}
}

func TestKeymapBindsNeedEngine(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	r.start(t)

	err := r.a.Keymap().LoadString(context.Background(), `gdnvim.map("<F5>", "save")`)
	if err == nil {
		t.Fatal("expected script error with the engine down")
	}
	if !strings.Contains(err.Error(), "engine not running") {
		t.Errorf("err = %v, want the engine-down reason in it", err)
	}
}

func TestEngineChanged(t *testing.T) {
	base := config.EngineConfig{Path: "nvim", Clean: true, ExtraArgs: []string{"-u", "NONE"}}

	tests := []struct {
		name string
		next config.EngineConfig
		want bool
	}{
		{"same", config.EngineConfig{Path: "nvim", Clean: true, ExtraArgs: []string{"-u", "NONE"}}, false},
		{"path", config.EngineConfig{Path: "nvim-nightly", Clean: true, ExtraArgs: []string{"-u", "NONE"}}, true},
		{"clean", config.EngineConfig{Path: "nvim", Clean: false, ExtraArgs: []string{"-u", "NONE"}}, true},
		{"args", config.EngineConfig{Path: "nvim", Clean: true, ExtraArgs: []string{"-u", "init.lua"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engineChanged(base, tt.next); got != tt.want {
				t.Errorf("engineChanged = %v, want %v", got, tt.want)
			}
		})
	}

	if engineChanged(config.EngineConfig{}, config.EngineConfig{ExtraArgs: []string{}}) {
		t.Error("nil and empty extra args reported as a change")
	}
}

// testShell is a Shell over the in-memory fakes with hand-fed event
// channels.
type testShell struct {
	widget  *testWidget
	actions *testActions
	dialogs *testDialogs
	keys    chan key.Event
	notes   chan host.Event
	done    chan struct{}
	initErr error
	finis   atomic.Int32
	renders atomic.Int32
	applies atomic.Int32
}

func newTestShell() *testShell {
	return &testShell{
		widget:  newTestWidget(""),
		actions: &testActions{},
		dialogs: &testDialogs{},
		keys:    make(chan key.Event, 8),
		notes:   make(chan host.Event, 8),
		done:    make(chan struct{}),
	}
}

func (s *testShell) Init() error              { return s.initErr }
func (s *testShell) Fini()                    { s.finis.Add(1) }
func (s *testShell) Widget() host.TextWidget  { return s.widget }
func (s *testShell) Actions() host.Actions    { return s.actions }
func (s *testShell) Dialogs() host.Dialogs    { return s.dialogs }
func (s *testShell) Keys() <-chan key.Event   { return s.keys }
func (s *testShell) Notes() <-chan host.Event { return s.notes }
func (s *testShell) Done() <-chan struct{}    { return s.done }
func (s *testShell) Render()                  { s.renders.Add(1) }

func (s *testShell) Apply(key.Event, router.Result) []host.Event {
	s.applies.Add(1)
	return nil
}

func TestRunQuitFromShell(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	sh := newTestShell()

	errc := make(chan error, 1)
	go func() { errc <- r.a.Run(context.Background(), sh) }()

	sh.keys <- key.NewEvent(key.KeyRune, 'j', 0)
	deadline := time.Now().Add(2 * time.Second)
	for sh.applies.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if sh.applies.Load() == 0 {
		t.Fatal("key never reached the shell's native handling")
	}
	for sh.renders.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if sh.renders.Load() == 0 {
		t.Error("no render after input")
	}

	close(sh.done)
	select {
	case err := <-errc:
		if !errors.Is(err, ErrQuit) {
			t.Fatalf("Run = %v, want ErrQuit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after shell quit")
	}

	if sh.finis.Load() != 1 {
		t.Errorf("Fini calls = %d, want 1", sh.finis.Load())
	}
	if r.a.Running() {
		t.Error("Running() = true after Run returned")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	sh := newTestShell()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.a.Run(ctx, sh) }()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if sh.finis.Load() != 1 {
		t.Errorf("Fini calls = %d, want 1", sh.finis.Load())
	}
}

func TestRunShellInitError(t *testing.T) {
	r := newRig(t, scratchOptions(t))
	sh := newTestShell()
	sh.initErr = errors.New("no tty")

	err := r.a.Run(context.Background(), sh)
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "shell" {
		t.Fatalf("Run = %v, want shell InitError", err)
	}
	if sh.finis.Load() != 0 {
		t.Errorf("Fini called after failed Init")
	}
	if r.a.Running() {
		t.Error("Running() = true after failed Run")
	}
}
