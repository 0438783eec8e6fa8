package router

import (
	"strings"
	"time"

	"gdnvim/internal/host"
	"gdnvim/internal/input/key"
)

// Engine is the router's handle on the embedded editing engine. The
// bridge implements it; the router never touches the RPC layer.
type Engine interface {
	// SendKeys forwards keys in engine notation and reports whether
	// the write was accepted.
	SendKeys(keys string) bool

	// LeaveInsert runs the return-to-normal pipeline: final widget
	// text upload, Escape, echo drain, cursor restore.
	LeaveInsert()

	// PushCursor uploads the widget caret position to the engine.
	PushCursor()

	// PullCursor moves the widget caret to the engine's cursor.
	PullCursor()

	// PullSelection mirrors the engine's visual selection onto the
	// widget.
	PullSelection()

	// JoinNoSpace joins lines without inserting a space, honoring a
	// typed count.
	JoinNoSpace()

	// OptionValue reads an engine option by name.
	OptionValue(name string) (string, error)

	// RegisterContents reads an engine register by name.
	RegisterContents(name string) (string, error)
}

// Editor is the application surface of the embedding editor, extended
// with the navigation hooks resolved through language tooling.
type Editor interface {
	host.Actions

	// GotoDefinition resolves the symbol at the caret.
	GotoDefinition()

	// ShowDocumentation opens documentation for word.
	ShowDocumentation(word string)

	// VersionLine returns the host and engine version string shown by
	// :version.
	VersionLine() string
}

// Route identifies the path a key event was resolved on.
type Route uint8

const (
	// RouteNone means the event was not consumed and the widget's
	// default handling proceeds.
	RouteNone Route = iota

	// RouteLocal means a host-side handler ran.
	RouteLocal

	// RouteEngine means a keystream was forwarded to the engine.
	RouteEngine

	// RoutePending means the event armed or extended a pending state.
	RoutePending
)

// String returns the route name.
func (r Route) String() string {
	switch r {
	case RouteNone:
		return "none"
	case RouteLocal:
		return "local"
	case RouteEngine:
		return "engine"
	case RoutePending:
		return "pending"
	default:
		return "unknown"
	}
}

// Result reports how one key event was dispatched.
type Result struct {
	// Consumed is true when the widget must not also process the
	// event.
	Consumed bool

	// Route is the primary dispatch path.
	Route Route

	// Sent is the keystream forwarded to the engine, empty if none.
	Sent string

	// Action names the local handler that ran, empty if none.
	Action string
}

// Config adjusts router behavior.
type Config struct {
	// ChordTimeout is how long a pending multi-key chord, register
	// selection, or count may wait for its continuation, matching the
	// engine's timeoutlen. Zero expires them on the next tick.
	ChordTimeout time.Duration

	// HistoryLimit caps the command-line history.
	HistoryLimit int

	// Strict forwards every insert-mode key to the engine instead of
	// leaving plain typing with the widget. The default hybrid handling
	// keeps IME composition and the widget's completion popup working;
	// strict trades those for exact engine insert behavior.
	Strict bool
}

// DefaultConfig returns the router defaults.
func DefaultConfig() Config {
	return Config{
		ChordTimeout: 1000 * time.Millisecond,
		HistoryLimit: 100,
	}
}

// Router translates key events for one widget binding. It is not safe
// for concurrent use; the bridge drives it from its poll loop.
type Router struct {
	cfg    Config
	engine Engine
	editor Editor
	widget host.TextWidget

	mode          string
	visualVariant rune

	chord     string
	chordTime time.Time
	count     string

	pend        pendingOp
	regWait     bool
	selectedReg rune

	cmdline cmdlineState
	search  searchState
	finds   findState
	marks   map[rune]position
	jumps   jumpList
	macros  macroState

	usedRegs map[rune]struct{}
	binds    map[string]string

	sent   []string
	action string
}

type position struct {
	line int
	col  int
}

// New builds a Router over the engine, editor, and widget surfaces.
// The router starts in normal mode.
func New(cfg Config, engine Engine, editor Editor, widget host.TextWidget) *Router {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Router{
		cfg:      cfg,
		engine:   engine,
		editor:   editor,
		widget:   widget,
		mode:     "normal",
		cmdline:  cmdlineState{histIdx: -1},
		marks:    make(map[rune]position),
		macros:   newMacroState(),
		usedRegs: make(map[rune]struct{}),
		binds:    make(map[string]string),
	}
}

// SetChordTimeout replaces the chord timeout, for settings reload.
func (r *Router) SetChordTimeout(d time.Duration) {
	r.cfg.ChordTimeout = d
}

// SetStrict switches between strict and hybrid insert handling, for
// settings reload.
func (r *Router) SetStrict(strict bool) {
	r.cfg.Strict = strict
}

// HandleKey dispatches one key event and reports how it was resolved.
func (r *Router) HandleKey(ev key.Event) Result {
	r.sent = r.sent[:0]
	r.action = ""
	consumed := r.dispatch(ev)

	res := Result{Consumed: consumed, Sent: strings.Join(r.sent, ""), Action: r.action}
	switch {
	case res.Sent != "":
		res.Route = RouteEngine
	case res.Action != "":
		res.Route = RouteLocal
	case consumed:
		res.Route = RoutePending
	}
	return res
}

func (r *Router) dispatch(ev key.Event) bool {
	// Bare modifiers never change pending state; a Shift press on the
	// way to '*' must not cancel anything.
	if ev.IsModifierOnly() {
		return false
	}

	if r.cmdline.active {
		r.handleCmdline(ev)
		return true
	}
	if r.search.active {
		r.handleSearch(ev)
		return true
	}

	if r.pend.kind != pendingNone {
		if r.handlePendingOp(ev) {
			return true
		}
	}
	if r.regWait {
		if r.handleRegisterPrompt(ev) {
			return true
		}
	}

	switch {
	case r.isInsertMode():
		return r.handleInsert(ev)
	case r.isReplaceMode():
		return r.handleReplace(ev)
	default:
		return r.handleNormal(ev)
	}
}

// send forwards keys to the engine, recording them into an active
// macro first.
func (r *Router) send(keys string) bool {
	r.macros.record(keys)
	return r.sendRaw(keys)
}

// sendRaw forwards keys without macro recording. Command-line and
// search commits use it so replayed macros do not duplicate them.
func (r *Router) sendRaw(keys string) bool {
	r.sent = append(r.sent, keys)
	return r.engine.SendKeys(keys)
}

func (r *Router) local(name string) {
	r.action = name
}

// notationFor returns the engine notation for ev, escaping a literal
// '<' so it survives the engine's termcode replacement.
func notationFor(ev key.Event) string {
	s := ev.EngineString()
	if s == "<" {
		return "<LT>"
	}
	return s
}

// SetEngineMode records the mode reported by the engine. Both the
// short and long mode names are accepted.
func (r *Router) SetEngineMode(mode string) {
	r.mode = mode
	if !r.isVisualMode() {
		r.visualVariant = 0
	}
}

// Mode returns the last mode reported by the engine.
func (r *Router) Mode() string { return r.mode }

func (r *Router) isInsertMode() bool {
	return r.mode == "i" || r.mode == "insert"
}

func (r *Router) isReplaceMode() bool {
	return r.mode == "R" || r.mode == "replace"
}

func (r *Router) isVisualMode() bool {
	switch r.mode {
	case "v", "V", "\x16", "^V", "CTRL-V", "visual", "visual-line", "visual-block":
		return true
	}
	return false
}

func (r *Router) isOperatorPending() bool {
	return r.mode == "operator" || r.mode == "no"
}

// StatusName returns the label for the mode indicator. The engine
// reports one "visual" mode for all three variants, so the variant is
// taken from the key that entered it.
func (r *Router) StatusName() string {
	switch {
	case r.cmdline.active, r.search.active:
		return "COMMAND"
	case r.isInsertMode():
		return "INSERT"
	case r.isReplaceMode():
		return "REPLACE"
	case r.isVisualMode():
		switch r.visualVariant {
		case 'V':
			return "V-LINE"
		case '\x16':
			return "V-BLOCK"
		default:
			return "VISUAL"
		}
	default:
		return "NORMAL"
	}
}

// Chord returns the pending multi-key prefix, if any.
func (r *Router) Chord() string { return r.chord }

// CountBuffer returns the digits of a pending count prefix.
func (r *Router) CountBuffer() string { return r.count }

// PromptText returns the visible command-line or search buffer, or ""
// when neither sub-mode is active.
func (r *Router) PromptText() string {
	switch {
	case r.cmdline.active:
		return r.cmdline.buf
	case r.search.active:
		return r.search.buf
	default:
		return ""
	}
}

// RecordingRegister returns the register a macro is recording into,
// or 0 when idle.
func (r *Router) RecordingRegister() rune { return r.macros.recording }

// VisualVariant returns 'v', 'V', or '\x16' for the active visual
// mode, or 0 outside visual mode.
func (r *Router) VisualVariant() rune { return r.visualVariant }

// clearPending resets every half-entered input state: the sub-modes,
// the pending operator slot, and an unanswered register prompt. A
// register that was already chosen survives until it is used or
// canceled.
func (r *Router) clearPending() {
	r.cmdline.active = false
	r.search.active = false
	r.pend = pendingOp{}
	r.regWait = false
}

// Bind maps a single-key notation to a named action, consulted in
// normal mode before the default engine forward.
func (r *Router) Bind(notation, action string) error {
	events, err := key.ParseNotation(notation)
	if err != nil {
		return err
	}
	if len(events) != 1 {
		return ErrBadBinding
	}
	if !strings.HasPrefix(action, "keys:") {
		if _, ok := actionTable[action]; !ok {
			return ErrUnknownAction
		}
	}
	r.binds[events[0].EngineString()] = action
	return nil
}

// Unbind removes a binding made with Bind.
func (r *Router) Unbind(notation string) error {
	events, err := key.ParseNotation(notation)
	if err != nil {
		return err
	}
	if len(events) != 1 {
		return ErrBadBinding
	}
	delete(r.binds, events[0].EngineString())
	return nil
}

// Do runs a named action. Actions are the same handlers the default
// key dispatch uses; "keys:{notation}" forwards the notation as-is.
func (r *Router) Do(action string) error {
	if keys, ok := strings.CutPrefix(action, "keys:"); ok {
		r.send(keys)
		return nil
	}
	fn, ok := actionTable[action]
	if !ok {
		return ErrUnknownAction
	}
	fn(r)
	return nil
}

// runBind executes a user binding and reports whether one existed.
func (r *Router) runBind(notation string) bool {
	action, ok := r.binds[notation]
	if !ok {
		return false
	}
	if err := r.Do(action); err == nil && r.action == "" {
		r.local(action)
	}
	return true
}

var actionTable = map[string]func(*Router){
	"undo":                 func(r *Router) { r.send("u") },
	"redo":                 func(r *Router) { r.send("<C-r>") },
	"save":                 func(r *Router) { r.local("save"); r.editor.Save() },
	"save-all":             func(r *Router) { r.local("save-all"); r.editor.SaveAll() },
	"save-and-close":       func(r *Router) { r.saveAndClose() },
	"close":                func(r *Router) { r.local("close"); r.editor.CloseTab(false) },
	"close-discard":        func(r *Router) { r.closeDiscard() },
	"quick-open":           func(r *Router) { r.local("quick-open"); r.editor.QuickOpen() },
	"reload":               func(r *Router) { r.local("reload"); r.editor.ReloadFromDisk() },
	"next-tab":             func(r *Router) { r.local("next-tab"); r.editor.NextTab() },
	"prev-tab":             func(r *Router) { r.local("prev-tab"); r.editor.PrevTab() },
	"command-line":         func(r *Router) { r.openCommandLine() },
	"search-forward":       func(r *Router) { r.openSearch(true) },
	"search-backward":      func(r *Router) { r.openSearch(false) },
	"search-word-forward":  func(r *Router) { r.searchWord("*") },
	"search-word-backward": func(r *Router) { r.searchWord("#") },
	"search-next":          func(r *Router) { r.searchNext(true) },
	"search-prev":          func(r *Router) { r.searchNext(false) },
	"goto-definition":      func(r *Router) { r.gotoDefinition() },
	"goto-file":            func(r *Router) { r.gotoFileUnderCursor() },
	"open-url":             func(r *Router) { r.openURLUnderCursor() },
	"documentation":        func(r *Router) { r.showDocumentation() },
	"file-info":            func(r *Router) { r.showFileInfo() },
	"char-info":            func(r *Router) { r.showCharInfo() },
	"join-no-space":        func(r *Router) { r.joinNoSpace() },
	"page-up":              func(r *Router) { r.pageUp() },
	"page-down":            func(r *Router) { r.pageDown() },
	"half-page-up":         func(r *Router) { r.halfPageUp() },
	"half-page-down":       func(r *Router) { r.halfPageDown() },
	"scroll-line-up":       func(r *Router) { r.scrollViewportUp() },
	"scroll-line-down":     func(r *Router) { r.scrollViewportDown() },
	"jump-back":            func(r *Router) { r.send("<C-o>") },
	"jump-forward":         func(r *Router) { r.send("<C-i>") },
	"display-line-down":    func(r *Router) { r.displayLineDown() },
	"display-line-up":      func(r *Router) { r.displayLineUp() },
	"display-line-start":   func(r *Router) { r.displayLineStart() },
	"display-line-end":     func(r *Router) { r.displayLineEnd() },
	"display-line-first":   func(r *Router) { r.displayLineFirstNonBlank() },
	"fold-toggle":          func(r *Router) { r.foldToggle() },
	"fold-open":            func(r *Router) { r.foldOpen() },
	"fold-close":           func(r *Router) { r.foldClose() },
	"fold-open-all":        func(r *Router) { r.foldOpenAll() },
	"fold-close-all":       func(r *Router) { r.foldCloseAll() },
	"help":                 func(r *Router) { r.local("help"); r.editor.ShowHelp("") },
	"version":              func(r *Router) { r.local("version"); r.editor.Echo(r.editor.VersionLine()) },
}
