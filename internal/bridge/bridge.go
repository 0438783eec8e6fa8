// Package bridge wires the embedded engine to the host editor: it owns
// the engine process, the rpc client, the buffer sync tracker, and the
// input router, and carries data between them once per host frame.
//
// Every method on Bridge is meant for the host's frame thread. The rpc
// read loop and the key mailbox run on their own goroutines and hand
// their findings over through the client's State and small queues that
// Poll drains.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gdnvim/internal/logger"
	"gdnvim/internal/bufsync"
	"gdnvim/internal/host"
	"gdnvim/internal/input/key"
	"gdnvim/internal/input/router"
	"gdnvim/internal/nvim"
	"gdnvim/internal/nvim/process"
	"gdnvim/internal/nvim/rpc"
)

const (
	// stopTimeout bounds how long teardown waits for the engine to
	// exit before killing it.
	stopTimeout = 2 * time.Second

	// keyDrainLimit caps how many deferred keys one Poll delivers so a
	// burst cannot stall the frame.
	keyDrainLimit = 5

	// keyFlushTimeout bounds the insert-exit wait for queued keys to
	// reach the engine. A stall surfaces through timeout accounting.
	keyFlushTimeout = 200 * time.Millisecond
)

// Config carries the bridge policy knobs. Zero values fall back to
// defaults.
type Config struct {
	// Engine is the child-process spawn configuration.
	Engine process.Config

	// RPC sets the per-call budgets of the engine client.
	RPC nvim.Config

	// ChordTimeout is how long pending chords, counts, and register
	// selections wait for a continuation.
	ChordTimeout time.Duration

	// TimeoutThreshold is how many request timeouts inside
	// TimeoutWindow trip the recovery dialog.
	TimeoutThreshold int

	// TimeoutWindow is the sliding window for timeout accounting.
	TimeoutWindow time.Duration

	// GridWidth and GridHeight size the engine's UI grid.
	GridWidth  int
	GridHeight int

	// HostVersion is the host plugin version shown by :version.
	HostVersion string

	// Logger receives bridge diagnostics. Nil uses the application
	// logger.
	Logger *logger.Logger
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{
		ChordTimeout:     time.Second,
		TimeoutThreshold: 3,
		TimeoutWindow:    5 * time.Second,
		GridWidth:        80,
		GridHeight:       24,
		HostVersion:      "0.1.0",
	}
}

type bufEnter struct {
	buf  rpc.BufferID
	name string
}

// defJump is a definition target in a file that is not open yet. It is
// applied when the host finishes switching to that file.
type defJump struct {
	path string
	line int
	col  int
}

// Bridge is the per-plugin root: one engine session, one bound buffer,
// one router. The host calls HandleKey for input, OnEvent for widget
// signals, and Poll once per frame.
type Bridge struct {
	cfg Config
	log *logger.Logger

	widget   host.TextWidget
	actions  host.Actions
	dialogs  host.Dialogs
	resolver SymbolResolver

	sup   *process.Supervisor
	spawn func() (io.Reader, io.WriteCloser, error)

	ctx    context.Context
	cancel context.CancelFunc

	// engineMu guards the session handle swap during restarts. Readers
	// try-lock and treat a busy handle as down for one frame.
	engineMu sync.Mutex
	client   *nvim.Client
	mailbox  *rpc.Mailbox

	tracker *bufsync.Tracker
	router  *router.Router
	clip    nvim.Clipboard

	engineVersion process.Version

	// Current binding.
	path      string
	buf       rpc.BufferID
	switchSeq uint64

	pendingJump *defJump

	// Escape pipeline state.
	exitingInsert bool
	queuedKeys    []string

	// Last caret position agreed with the engine, widget coordinates.
	lastSyncedLine int
	lastSyncedCol  int
	haveSynced     bool
	mouseSyncing   bool

	// relayMu guards the queues filled from rpc goroutines.
	relayMu   sync.Mutex
	bufEnters []bufEnter
	trouble   string

	watch      *watchdog
	dialogOpen bool

	started bool
}

// New builds a bridge bound to the given widget and editor surfaces.
// Start must be called before the bridge does anything.
func New(cfg Config, widget host.TextWidget, actions host.Actions, dialogs host.Dialogs) *Bridge {
	def := DefaultConfig()
	if cfg.ChordTimeout <= 0 {
		cfg.ChordTimeout = def.ChordTimeout
	}
	if cfg.TimeoutThreshold <= 0 {
		cfg.TimeoutThreshold = def.TimeoutThreshold
	}
	if cfg.TimeoutWindow <= 0 {
		cfg.TimeoutWindow = def.TimeoutWindow
	}
	if cfg.GridWidth <= 0 {
		cfg.GridWidth = def.GridWidth
	}
	if cfg.GridHeight <= 0 {
		cfg.GridHeight = def.GridHeight
	}
	if cfg.HostVersion == "" {
		cfg.HostVersion = def.HostVersion
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	b := &Bridge{
		cfg:     cfg,
		log:     log.WithComponent("bridge"),
		widget:  widget,
		actions: actions,
		dialogs: dialogs,
		tracker: bufsync.NewTracker(),
		clip:    systemClipboard{},
		watch:   newWatchdog(cfg.TimeoutThreshold, cfg.TimeoutWindow),
		sup:     process.NewSupervisor(process.SupervisorConfig{Engine: cfg.Engine}),
	}
	b.spawn = b.spawnEngine
	b.sup.OnExit(b.onEngineExit)
	b.router = router.New(router.Config{ChordTimeout: cfg.ChordTimeout}, b, b, widget)
	return b
}

// SetResolver installs the language-server lookup used by gd and K.
func (b *Bridge) SetResolver(r SymbolResolver) { b.resolver = r }

// Router exposes the input router for status queries and user
// bindings.
func (b *Bridge) Router() *router.Router { return b.router }

// CurrentPath returns the path of the bound buffer, or "" for the
// scratch binding.
func (b *Bridge) CurrentPath() string { return b.path }

// EngineVersion returns the version learned during the handshake.
func (b *Bridge) EngineVersion() process.Version { return b.engineVersion }

// Connected reports whether an engine session is up.
func (b *Bridge) Connected() bool {
	b.engineMu.Lock()
	c := b.client
	b.engineMu.Unlock()
	return c != nil && c.Connected()
}

// Start spawns the engine, runs the handshake, and binds the widget's
// current content to the engine's startup buffer.
func (b *Bridge) Start(ctx context.Context) error {
	if b.started {
		return ErrStarted
	}
	b.ctx, b.cancel = context.WithCancel(ctx)

	r, w, err := b.spawn()
	if err != nil {
		return fmt.Errorf("spawn engine: %w", err)
	}
	if err := b.startSession(r, w); err != nil {
		_ = b.sup.Stop(stopTimeout)
		return err
	}
	b.started = true
	if err := b.bindScratch(); err != nil {
		b.log.Warn("initial buffer bind failed: %v", err)
	}
	return nil
}

// Stop tears the session and the engine process down.
func (b *Bridge) Stop() error {
	if !b.started {
		return nil
	}
	b.started = false
	b.closeSession()
	if b.cancel != nil {
		b.cancel()
	}
	return b.sup.Stop(stopTimeout)
}

// spawnEngine launches a session through the supervisor and hands its
// stdio back.
func (b *Bridge) spawnEngine() (io.Reader, io.WriteCloser, error) {
	p, err := b.sup.Spawn()
	if err != nil {
		return nil, nil, err
	}
	return p.Stdout, p.Stdin, nil
}

// startSession builds a client on the given pipes, runs the handshake,
// and swaps the new handle in.
func (b *Bridge) startSession(r io.Reader, w io.WriteCloser) error {
	sess := rpc.NewSession(r, w, w)
	client := nvim.NewClient(sess, b.cfg.RPC)
	client.SetClipboard(b.clip)
	client.OnBufEnter(b.noteBufEnter)
	sess.Start(b.ctx)

	hs, err := client.Handshake(b.ctx)
	if err != nil {
		_ = sess.Close()
		return fmt.Errorf("handshake: %w", err)
	}
	if !hs.VersionOK {
		b.log.Warn("engine version %s is below the supported minimum", hs.Version)
	}
	b.engineVersion = hs.Version
	b.log.Info("engine session up, channel %d, version %s", hs.Channel, hs.Version)

	mb := rpc.NewMailbox(func(keys string) error {
		err := client.SendKeys(b.ctx, keys)
		if err != nil {
			b.noteRPC(err)
		}
		return err
	})
	mb.Start()

	b.engineMu.Lock()
	b.client = client
	b.mailbox = mb
	b.engineMu.Unlock()
	return nil
}

// closeSession detaches and tears down the current handle, leaving the
// bridge disconnected.
func (b *Bridge) closeSession() {
	b.engineMu.Lock()
	c, mb := b.client, b.mailbox
	b.client, b.mailbox = nil, nil
	b.engineMu.Unlock()
	if mb != nil {
		mb.Stop()
	}
	if c != nil {
		_ = c.Close()
	}
}

// engine returns the current client, or nil while the handle is down
// or mid-swap.
func (b *Bridge) engine() *nvim.Client {
	if !b.engineMu.TryLock() {
		return nil
	}
	c := b.client
	b.engineMu.Unlock()
	if c == nil || !c.Connected() {
		return nil
	}
	return c
}

// postStatus distinguishes a busy handle, which is worth retrying next
// frame, from a dead one.
type postStatus int

const (
	postSent postStatus = iota
	postBusy
	postDown
)

// tryPost queues keys for FIFO delivery to the engine without ever
// blocking on the handle lock.
func (b *Bridge) tryPost(keys string) postStatus {
	if !b.engineMu.TryLock() {
		return postBusy
	}
	c, mb := b.client, b.mailbox
	b.engineMu.Unlock()
	if c == nil || mb == nil || !c.Connected() {
		return postDown
	}
	mb.Push(keys)
	return postSent
}

func (b *Bridge) post(keys string) bool {
	return b.tryPost(keys) == postSent
}

// flushKeys waits until everything pushed to the mailbox so far has
// been sent and answered, so a following call cannot overtake queued
// keys on the wire.
func (b *Bridge) flushKeys() {
	if !b.engineMu.TryLock() {
		return
	}
	mb := b.mailbox
	b.engineMu.Unlock()
	if mb != nil {
		mb.Flush(keyFlushTimeout)
	}
}

// HandleKey routes one key event from the host's input hook.
func (b *Bridge) HandleKey(ev key.Event) router.Result {
	return b.router.HandleKey(ev)
}

// OnEvent is the single entry point for widget notifications.
func (b *Bridge) OnEvent(ev host.Event) {
	if !b.started {
		return
	}
	switch ev.Kind {
	case host.EventCaretMoved:
		b.handleCaretMoved(ev)
	case host.EventTextChanged, host.EventLinesEdited:
		b.handleTextChanged()
	case host.EventMouseSelection:
		b.handleMouseSelection(ev)
	case host.EventMouseClick:
		b.handleMouseClick(ev)
	case host.EventFocusEntered:
		b.handleFocusEntered()
	case host.EventResized:
		b.handleResized()
	case host.EventFocusExited:
		// Nothing; pending router state expires on its own clock.
	}
}

// Poll advances the bridge by one frame: engine trouble first, then
// buffer events so content is current before the caret and viewport
// land on it, then deferred keys and the chord clock.
func (b *Bridge) Poll() {
	if !b.started {
		return
	}
	if reason := b.takeTrouble(); reason != "" {
		b.promptRestart(reason)
	}

	c := b.engine()
	if c == nil {
		b.router.TickTimeout(time.Now())
		return
	}

	for _, msg := range c.State().TakeDebugMessages() {
		b.log.Debug("engine: %s", msg)
	}
	b.drainBufEnters()
	b.drainBufEvents(c)
	if snap, ok := c.State().TakeState(); ok {
		b.applySnapshot(snap)
	}
	if vp, ok := c.State().TakeViewport(); ok {
		b.applyViewport(vp)
	}
	b.drainQueuedKeys(keyDrainLimit)
	b.router.TickTimeout(time.Now())
}

// applySnapshot feeds the engine-reported mode into the router and
// mirrors the engine cursor while the engine owns it. Grid cursor
// positions are screen coordinates and are not applied; the byte
// relay covers every motion.
func (b *Bridge) applySnapshot(snap nvim.Snapshot) {
	if snap.Mode != "" {
		b.router.SetEngineMode(snap.Mode)
	}
	if b.exitingInsert || b.insertLike() {
		return
	}
	if snap.FromRelay {
		b.applyEngineCursor(snap.Cursor)
	}
	if b.visualLike() && !b.mouseSyncing {
		b.PullSelection()
	}
}

// applyViewport scrolls the widget to the engine's topline.
func (b *Bridge) applyViewport(vp nvim.Viewport) {
	top := int(vp.Topline)
	if top != b.widget.FirstVisibleLine() {
		b.widget.SetFirstVisibleLine(top)
	}
}

func (b *Bridge) handleFocusEntered() {
	if b.insertLike() || b.visualLike() {
		return
	}
	b.PushCursor()
}

func (b *Bridge) handleResized() {
	c := b.engine()
	if c == nil {
		return
	}
	b.resizeGrid(c)
	c.State().ForceViewportChanged()
}

func (b *Bridge) resizeGrid(c *nvim.Client) {
	h := b.widget.VisibleLineCount()
	if h <= 0 {
		h = b.cfg.GridHeight
	}
	if err := c.UITryResize(b.ctx, b.cfg.GridWidth, h); err != nil {
		b.noteRPC(err)
	}
}

// drainQueuedKeys delivers keys deferred during the Escape pipeline or
// while the handle was busy. limit < 0 flushes everything.
func (b *Bridge) drainQueuedKeys(limit int) {
	for limit != 0 && len(b.queuedKeys) > 0 {
		if !b.post(b.queuedKeys[0]) {
			return
		}
		b.queuedKeys = b.queuedKeys[1:]
		limit--
	}
}

// insertLike reports whether the router believes the engine is in
// insert or replace mode.
func (b *Bridge) insertLike() bool {
	mode := b.router.Mode()
	return strings.HasPrefix(mode, "i") || strings.HasPrefix(mode, "R") ||
		mode == "insert" || mode == "replace"
}

// visualLike reports whether the router believes the engine is in any
// visual mode.
func (b *Bridge) visualLike() bool {
	mode := b.router.Mode()
	if mode == "" {
		return false
	}
	switch mode[0] {
	case 'v', 'V', 0x16:
		return true
	}
	return false
}

// noteBufEnter queues a buffer-enter relay; it runs on the rpc read
// loop.
func (b *Bridge) noteBufEnter(buf rpc.BufferID, name string) {
	b.relayMu.Lock()
	b.bufEnters = append(b.bufEnters, bufEnter{buf: buf, name: name})
	b.relayMu.Unlock()
}

// drainBufEnters follows engine-side buffer switches so the host tab
// view tracks the engine.
func (b *Bridge) drainBufEnters() {
	b.relayMu.Lock()
	evs := b.bufEnters
	b.bufEnters = nil
	b.relayMu.Unlock()
	for _, ev := range evs {
		if ev.name == "" || ev.name == b.path {
			continue
		}
		b.log.Debug("engine entered buffer %q", ev.name)
		b.actions.OpenFile(ev.name)
	}
}

// setTrouble records an engine failure for the next Poll. The first
// reason wins; later ones describe the same outage.
func (b *Bridge) setTrouble(reason string) {
	b.relayMu.Lock()
	if b.trouble == "" {
		b.trouble = reason
	}
	b.relayMu.Unlock()
}

func (b *Bridge) takeTrouble() string {
	b.relayMu.Lock()
	r := b.trouble
	b.trouble = ""
	b.relayMu.Unlock()
	return r
}

// noteRPC classifies a failed engine call: timeouts feed the recovery
// watchdog, disconnects are reported through the supervisor, anything
// else is logged and isolated to the operation that caused it.
func (b *Bridge) noteRPC(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, rpc.ErrTimeout) {
		if b.watch.RecordTimeout(time.Now()) {
			b.setTrouble("engine not responding")
		}
		return
	}
	if errors.Is(err, rpc.ErrShutdown) || errors.Is(err, nvim.ErrNotConnected) {
		return
	}
	b.log.Error("engine call failed: %v", err)
}
