// Package term is a terminal host for the engine bridge: a tcell
// screen that stands in for the embedding editor during development.
// It provides the widget, action, and dialog surfaces the bridge
// binds to, with tabs, a chroma-highlighted pane, a vim-style status
// line, and external-change watching on the file under edit.
package term

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"gdnvim/internal/app"
	"gdnvim/internal/config"
	"gdnvim/internal/fuzzy"
	"gdnvim/internal/host"
	"gdnvim/internal/input/key"
	"gdnvim/internal/input/router"
	"gdnvim/internal/logger"
)

// StatusSource is the application surface the host reads each frame
// for the status line and display toggles.
type StatusSource interface {
	Status() app.Status
	Settings() config.Settings
}

// Options configures the host.
type Options struct {
	// Root is the directory quick-open searches.
	Root string

	// Theme names the chroma style for the pane.
	Theme string

	// Log is the parent logger.
	Log *logger.Logger
}

// tab is one open file. The current tab lives in the widget; the
// rest keep their text and view state here.
type tab struct {
	path     string
	text     string
	line     int
	col      int
	top      int
	modified bool
}

// Host implements the application shell on a terminal. The input
// pump goroutine translates tcell events; everything else runs on
// the frame thread driven by the application loop.
type Host struct {
	opts   Options
	log    *logger.Logger
	widget *Widget
	hl     *highlighter

	screen tcell.Screen
	watch  *fileWatch

	keys  chan key.Event
	notes chan host.Event
	done  chan struct{}
	quit  chan struct{}

	onSwitch func(path string)
	onReload func()
	src      StatusSource

	mu       sync.Mutex
	tabs     []*tab
	cur      int
	clean    uint64
	wasDirty bool
	message  string
	output   []string
	overlay  []string
	dialog   chan key.Event
	diskPath string
	dragging bool
	anchorL  int
	anchorC  int

	doneOnce sync.Once
	finiOnce sync.Once
}

const (
	outputKeep    = 200
	overlayKeep   = 10
	quickOpenRows = 8
	wheelStep     = 3
)

// New builds a host. The screen is not touched until Init.
func New(opts Options) *Host {
	if opts.Theme == "" {
		opts.Theme = "monokai"
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}
	h := &Host{
		opts:   opts,
		log:    log.WithComponent("term"),
		widget: NewWidget(),
		hl:     newHighlighter(opts.Theme),
		keys:   make(chan key.Event, 64),
		notes:  make(chan host.Event, 64),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
	h.hl.SetFile("")
	return h
}

// SetSource wires the application the host reads status from. Call
// before the run loop starts.
func (t *Host) SetSource(src StatusSource) { t.src = src }

// OnSwitch registers the hook run after the current file changes.
func (t *Host) OnSwitch(fn func(path string)) { t.onSwitch = fn }

// OnReload registers the hook run after an external disk change was
// accepted into the widget.
func (t *Host) OnReload(fn func()) { t.onReload = fn }

// Init takes over the terminal and starts the input pump.
func (t *Host) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.EnableMouse()
	screen.EnablePaste()
	screen.EnableFocus()
	screen.SetStyle(t.hl.Base())
	t.screen = screen

	width, height := screen.Size()
	t.widget.setViewport(width, height-1)

	fw, err := newFileWatch(t.log, t.diskChanged)
	if err != nil {
		t.log.Warn("file watch unavailable: %v", err)
	} else {
		t.watch = fw
	}

	go t.pump()
	return nil
}

// Fini releases the terminal. Safe to call twice.
func (t *Host) Fini() {
	t.finiOnce.Do(func() {
		close(t.quit)
		if t.watch != nil {
			t.watch.Close()
		}
		if t.screen != nil {
			t.screen.Fini()
		}
	})
}

func (t *Host) Widget() host.TextWidget { return t.widget }

func (t *Host) Actions() host.Actions { return t }

func (t *Host) Dialogs() host.Dialogs { return t }

func (t *Host) Keys() <-chan key.Event { return t.keys }

func (t *Host) Notes() <-chan host.Event { return t.notes }

func (t *Host) Done() <-chan struct{} { return t.done }

// pump translates tcell events until the screen is finalized. Keys go
// to the frame loop, or to the dialog sink while a modal prompt is
// open. Mouse handling mutates the widget directly; the notes it
// produces must never block the pump, so they are posted best effort.
func (t *Host) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			kev, ok := translateKey(e)
			if !ok {
				continue
			}
			if sink := t.sink(); sink != nil {
				select {
				case sink <- kev:
				case <-t.quit:
					return
				}
				continue
			}
			select {
			case t.keys <- kev:
			case <-t.quit:
				return
			}
		case *tcell.EventMouse:
			t.handleMouse(e)
		case *tcell.EventResize:
			t.handleResize(e)
		case *tcell.EventFocus:
			if e.Focused {
				t.postNote(host.Event{Kind: host.EventFocusEntered})
			} else {
				t.postNote(host.Event{Kind: host.EventFocusExited})
			}
		}
	}
}

// postNote forwards one notification without blocking. Mouse motion
// coalesces, so a note dropped on a full channel is repaired by the
// next one.
func (t *Host) postNote(n host.Event) {
	select {
	case t.notes <- n:
	default:
	}
}

func (t *Host) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	buttons := e.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		t.widget.scroll(-wheelStep)
	case buttons&tcell.WheelDown != 0:
		t.widget.scroll(wheelStep)
	case buttons&tcell.Button1 != 0:
		if y >= t.widget.VisibleLineCount() {
			return
		}
		line, col := t.widget.locate(x, y)
		t.mu.Lock()
		drag := t.dragging
		if !drag {
			t.dragging = true
			t.anchorL, t.anchorC = line, col
		}
		anchorL, anchorC := t.anchorL, t.anchorC
		t.mu.Unlock()

		if !drag {
			t.widget.Deselect()
			t.widget.SetCaret(line, col)
			t.postNote(host.Event{Kind: host.EventMouseClick, Line: line, Col: col})
			return
		}
		if line == anchorL && col == anchorC {
			return
		}
		fl, fc, tl, tc := anchorL, anchorC, line, col
		if fl > tl || (fl == tl && fc > tc) {
			fl, fc, tl, tc = tl, tc, fl, fc
		}
		t.widget.Select(fl, fc, tl, tc)
		t.postNote(host.Event{
			Kind:     host.EventMouseSelection,
			FromLine: fl, FromCol: fc,
			ToLine: tl, ToCol: tc,
		})
	default:
		t.mu.Lock()
		t.dragging = false
		t.mu.Unlock()
	}
}

func (t *Host) handleResize(e *tcell.EventResize) {
	width, height := e.Size()
	t.widget.setViewport(width, height-1)
	t.screen.Sync()
	t.postNote(host.Event{Kind: host.EventResized})
}

// translateKey converts a tcell key event into the bridge's model:
// named keys for specials, a rune plus modifier flags for characters,
// Ctrl-letters unfolded back to their letter.
func translateKey(e *tcell.EventKey) (key.Event, bool) {
	mods := translateMods(e.Modifiers())
	switch e.Key() {
	case tcell.KeyRune:
		return key.NewRuneEvent(e.Rune(), mods), true
	case tcell.KeyEscape:
		return key.NewSpecialEvent(key.KeyEscape, mods), true
	case tcell.KeyEnter:
		return key.NewSpecialEvent(key.KeyEnter, mods), true
	case tcell.KeyTab:
		return key.NewSpecialEvent(key.KeyTab, mods), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewSpecialEvent(key.KeyBackspace, mods), true
	case tcell.KeyDelete:
		return key.NewSpecialEvent(key.KeyDelete, mods), true
	case tcell.KeyInsert:
		return key.NewSpecialEvent(key.KeyInsert, mods), true
	case tcell.KeyHome:
		return key.NewSpecialEvent(key.KeyHome, mods), true
	case tcell.KeyEnd:
		return key.NewSpecialEvent(key.KeyEnd, mods), true
	case tcell.KeyPgUp:
		return key.NewSpecialEvent(key.KeyPageUp, mods), true
	case tcell.KeyPgDn:
		return key.NewSpecialEvent(key.KeyPageDown, mods), true
	case tcell.KeyUp:
		return key.NewSpecialEvent(key.KeyUp, mods), true
	case tcell.KeyDown:
		return key.NewSpecialEvent(key.KeyDown, mods), true
	case tcell.KeyLeft:
		return key.NewSpecialEvent(key.KeyLeft, mods), true
	case tcell.KeyRight:
		return key.NewSpecialEvent(key.KeyRight, mods), true
	case tcell.KeyF1:
		return key.NewSpecialEvent(key.KeyF1, mods), true
	case tcell.KeyF2:
		return key.NewSpecialEvent(key.KeyF2, mods), true
	case tcell.KeyF3:
		return key.NewSpecialEvent(key.KeyF3, mods), true
	case tcell.KeyF4:
		return key.NewSpecialEvent(key.KeyF4, mods), true
	case tcell.KeyF5:
		return key.NewSpecialEvent(key.KeyF5, mods), true
	case tcell.KeyF6:
		return key.NewSpecialEvent(key.KeyF6, mods), true
	case tcell.KeyF7:
		return key.NewSpecialEvent(key.KeyF7, mods), true
	case tcell.KeyF8:
		return key.NewSpecialEvent(key.KeyF8, mods), true
	case tcell.KeyF9:
		return key.NewSpecialEvent(key.KeyF9, mods), true
	case tcell.KeyF10:
		return key.NewSpecialEvent(key.KeyF10, mods), true
	case tcell.KeyF11:
		return key.NewSpecialEvent(key.KeyF11, mods), true
	case tcell.KeyF12:
		return key.NewSpecialEvent(key.KeyF12, mods), true
	}
	if k := e.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		r := rune('a' + int(k-tcell.KeyCtrlA))
		return key.NewRuneEvent(r, mods|key.ModCtrl), true
	}
	return key.Event{}, false
}

func translateMods(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}

// Apply performs the widget's native handling for a routed key: the
// plain typing and editing specials the router leaves unconsumed in
// its hybrid insert handling. Consumed keys only feed the overlay.
func (t *Host) Apply(ev key.Event, res router.Result) []host.Event {
	t.noteOverlay(ev)
	if res.Consumed {
		return nil
	}
	hadSel := t.widget.HasSelection()
	switch {
	case ev.IsEnter():
		t.widget.insertNewline()
		return t.afterEdit(true)
	case ev.IsBackspace():
		t.widget.backspace()
		return t.afterEdit(true)
	case ev.Key == key.KeyDelete && ev.Modifiers == key.ModNone:
		t.widget.deleteForward()
		return t.afterEdit(true)
	case ev.Key == key.KeyTab && ev.Modifiers == key.ModNone:
		t.widget.insertRune('\t')
		return t.afterEdit(hadSel)
	case isMotionKey(ev.Key) && ev.Modifiers == key.ModNone:
		return t.moveNative(ev)
	case ev.IsChar() && !ev.IsModified():
		t.widget.insertRune(ev.Rune)
		return t.afterEdit(hadSel)
	}
	return nil
}

func isMotionKey(k key.Key) bool {
	switch k {
	case key.KeyLeft, key.KeyRight, key.KeyUp, key.KeyDown,
		key.KeyHome, key.KeyEnd, key.KeyPageUp, key.KeyPageDown:
		return true
	}
	return false
}

// afterEdit reports a native edit to the bridge. Single-line typing
// names the touched line; anything that moved line boundaries asks
// for the full resync.
func (t *Host) afterEdit(structural bool) []host.Event {
	line, col := t.widget.Caret()
	edit := host.Event{Kind: host.EventLinesEdited, FromLine: line, ToLine: line}
	if structural {
		edit = host.Event{Kind: host.EventTextChanged}
	}
	return []host.Event{
		edit,
		{Kind: host.EventCaretMoved, Line: line, Col: col},
	}
}

func (t *Host) moveNative(ev key.Event) []host.Event {
	w := t.widget
	line, col := w.Caret()
	switch ev.Key {
	case key.KeyLeft:
		if col > 0 {
			col--
		} else if line > 0 {
			line--
			col = runeLen(w.Line(line))
		}
	case key.KeyRight:
		if col < runeLen(w.Line(line)) {
			col++
		} else if line < w.LineCount()-1 {
			line++
			col = 0
		}
	case key.KeyUp:
		line--
	case key.KeyDown:
		line++
	case key.KeyHome:
		col = 0
	case key.KeyEnd:
		col = runeLen(w.Line(line))
	case key.KeyPageUp:
		line -= w.VisibleLineCount()
	case key.KeyPageDown:
		line += w.VisibleLineCount()
	}
	w.SetCaret(line, col)
	nl, nc := w.Caret()
	return []host.Event{{Kind: host.EventCaretMoved, Line: nl, Col: nc}}
}

// noteOverlay records the key notation for the on-screen key echo.
func (t *Host) noteOverlay(ev key.Event) {
	if t.src == nil || !t.src.Settings().UI.KeyOverlay {
		return
	}
	s := ev.EngineString()
	if s == "" {
		return
	}
	t.mu.Lock()
	t.overlay = append(t.overlay, s)
	if len(t.overlay) > overlayKeep {
		t.overlay = t.overlay[len(t.overlay)-overlayKeep:]
	}
	t.mu.Unlock()
}

// OpenFile opens path in a tab, focusing an existing tab for the same
// file. A path that does not exist yet opens empty.
func (t *Host) OpenFile(path string) {
	if path == "" {
		return
	}
	abs := path
	if a, err := filepath.Abs(path); err == nil {
		abs = a
	}

	t.mu.Lock()
	for i, tb := range t.tabs {
		if tb.path == abs {
			t.switchLocked(i)
			t.mu.Unlock()
			t.afterSwitch(abs)
			return
		}
	}
	data, err := os.ReadFile(abs)
	if err != nil && !os.IsNotExist(err) {
		t.mu.Unlock()
		t.Echo(fmt.Sprintf("Cannot open %s: %v", path, err))
		return
	}
	t.stashLocked()
	t.tabs = append(t.tabs, &tab{path: abs, text: normalizeText(string(data))})
	t.cur = len(t.tabs) - 1
	t.loadLocked()
	t.mu.Unlock()
	t.afterSwitch(abs)
}

// OpenURL hands url to the system opener, best effort.
func (t *Host) OpenURL(url string) {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if err := exec.Command(opener, url).Start(); err != nil {
		t.log.Warn("open url: %v", err)
	}
}

// QuickOpen prompts for a file with fuzzy matching over the workspace
// tree. Like every modal prompt it blocks the frame loop.
func (t *Host) QuickOpen() {
	files := listFiles(t.opts.Root, 4000)
	var best []fuzzy.Match
	input, ok := t.readLine("> ", func(q string) {
		best = fuzzy.Find(q, files, quickOpenRows)
		t.drawMatches(best)
	})
	if !ok {
		return
	}
	if len(best) > 0 {
		t.OpenFile(filepath.Join(t.opts.Root, best[0].Text))
		return
	}
	if input != "" {
		t.OpenFile(filepath.Join(t.opts.Root, input))
	}
}

// Save writes the widget content to the current file.
func (t *Host) Save() {
	t.mu.Lock()
	if len(t.tabs) == 0 {
		t.mu.Unlock()
		return
	}
	path := t.tabs[t.cur].path
	text := t.widget.Text()
	t.mu.Unlock()

	if path == "" {
		t.Echo("No file name")
		return
	}
	if err := t.writeFile(path, text); err != nil {
		t.Echo(fmt.Sprintf("Write failed: %v", err))
		return
	}
	t.mu.Lock()
	t.clean = t.widget.textRevision()
	t.wasDirty = false
	t.mu.Unlock()
}

// SaveAll writes every modified tab.
func (t *Host) SaveAll() {
	t.mu.Lock()
	t.stashLocked()
	type pending struct {
		path string
		text string
		tb   *tab
	}
	var work []pending
	for _, tb := range t.tabs {
		if tb.modified && tb.path != "" {
			work = append(work, pending{path: tb.path, text: tb.text, tb: tb})
		}
	}
	t.mu.Unlock()

	for _, p := range work {
		if err := t.writeFile(p.path, p.text); err != nil {
			t.Echo(fmt.Sprintf("Write failed: %v", err))
			return
		}
		t.mu.Lock()
		p.tb.modified = false
		if len(t.tabs) > 0 && t.tabs[t.cur] == p.tb {
			t.clean = t.widget.textRevision()
			t.wasDirty = false
		}
		t.mu.Unlock()
	}
}

func (t *Host) writeFile(path, text string) error {
	if t.watch != nil {
		t.watch.Mark()
	}
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	t.log.Debug("wrote %s", path)
	return nil
}

// CloseTab closes the current tab; closing the last one ends the
// session.
func (t *Host) CloseTab(force bool) {
	t.mu.Lock()
	if len(t.tabs) == 0 {
		t.mu.Unlock()
		t.closeDone()
		return
	}
	if !force && t.dirtyLocked() {
		t.mu.Unlock()
		t.Echo("No write since last change (add ! to override)")
		return
	}
	t.tabs = append(t.tabs[:t.cur], t.tabs[t.cur+1:]...)
	if len(t.tabs) == 0 {
		t.mu.Unlock()
		t.closeDone()
		return
	}
	if t.cur >= len(t.tabs) {
		t.cur = len(t.tabs) - 1
	}
	t.loadLocked()
	path := t.tabs[t.cur].path
	t.mu.Unlock()
	t.afterSwitch(path)
}

// CloseAllTabs ends the session unless unforced modified tabs remain;
// those stay open with the first one focused.
func (t *Host) CloseAllTabs(force bool) {
	t.mu.Lock()
	t.stashLocked()
	var kept []*tab
	if !force {
		for _, tb := range t.tabs {
			if tb.modified {
				kept = append(kept, tb)
			}
		}
	}
	if len(kept) == 0 {
		t.mu.Unlock()
		t.closeDone()
		return
	}
	t.tabs = kept
	t.cur = 0
	t.loadLocked()
	path := t.tabs[0].path
	t.mu.Unlock()
	t.Echo("No write since last change (add ! to override)")
	t.afterSwitch(path)
}

func (t *Host) NextTab() { t.cycleTab(1) }

func (t *Host) PrevTab() { t.cycleTab(-1) }

func (t *Host) cycleTab(delta int) {
	t.mu.Lock()
	if len(t.tabs) < 2 {
		t.mu.Unlock()
		return
	}
	i := (t.cur + delta + len(t.tabs)) % len(t.tabs)
	t.switchLocked(i)
	path := t.tabs[i].path
	t.mu.Unlock()
	t.afterSwitch(path)
}

// Tabs returns the open tab names in order.
func (t *Host) Tabs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, len(t.tabs))
	for i, tb := range t.tabs {
		names[i] = displayName(tb.path)
	}
	return names
}

// CurrentFile returns the path of the focused file.
func (t *Host) CurrentFile() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.tabs) == 0 {
		return ""
	}
	return t.tabs[t.cur].path
}

// ReloadFromDisk replaces the widget content with the on-disk file,
// keeping the caret where it was.
func (t *Host) ReloadFromDisk() {
	t.mu.Lock()
	if len(t.tabs) == 0 || t.tabs[t.cur].path == "" {
		t.mu.Unlock()
		return
	}
	path := t.tabs[t.cur].path
	data, err := os.ReadFile(path)
	if err != nil {
		t.mu.Unlock()
		t.Echo(fmt.Sprintf("Reload failed: %v", err))
		return
	}
	line, col := t.widget.Caret()
	t.widget.SetText(normalizeText(string(data)))
	t.widget.SetCaret(line, col)
	t.clean = t.widget.textRevision()
	t.wasDirty = false
	t.mu.Unlock()
}

func (t *Host) ShowHelp(topic string) {
	if topic == "" {
		topic = "quickref"
	}
	t.Echo("help: " + topic)
}

// Echo shows msg in the status area until the next message.
func (t *Host) Echo(msg string) {
	t.mu.Lock()
	t.message = msg
	t.mu.Unlock()
}

// Print appends one line to the output log and surfaces it like Echo.
// Multi-line engine listings arrive one call per line.
func (t *Host) Print(msg string) {
	t.mu.Lock()
	t.output = append(t.output, msg)
	if len(t.output) > outputKeep {
		t.output = t.output[len(t.output)-outputKeep:]
	}
	t.message = msg
	t.mu.Unlock()
}

func (t *Host) closeDone() {
	t.doneOnce.Do(func() { close(t.done) })
}

// diskChanged runs on the watch goroutine; the frame loop picks the
// flag up at the next render.
func (t *Host) diskChanged(path string) {
	t.mu.Lock()
	t.diskPath = path
	t.mu.Unlock()
}

func (t *Host) dirtyLocked() bool {
	return t.wasDirty || t.widget.textRevision() != t.clean
}

func (t *Host) stashLocked() {
	if t.cur < 0 || t.cur >= len(t.tabs) {
		return
	}
	tb := t.tabs[t.cur]
	tb.text = t.widget.Text()
	tb.line, tb.col = t.widget.Caret()
	tb.top = t.widget.FirstVisibleLine()
	tb.modified = t.dirtyLocked()
}

func (t *Host) loadLocked() {
	tb := t.tabs[t.cur]
	t.widget.SetText(tb.text)
	t.widget.SetCaret(tb.line, tb.col)
	t.widget.SetFirstVisibleLine(tb.top)
	t.clean = t.widget.textRevision()
	t.wasDirty = tb.modified
	t.hl.SetFile(tb.path)
	if t.watch != nil {
		t.watch.Watch(tb.path)
	}
	t.diskPath = ""
}

func (t *Host) switchLocked(i int) {
	t.stashLocked()
	t.cur = i
	t.loadLocked()
}

func (t *Host) afterSwitch(path string) {
	if t.onSwitch != nil {
		t.onSwitch(path)
	}
}

func displayName(path string) string {
	if path == "" {
		return "[No Name]"
	}
	return filepath.Base(path)
}

// normalizeText converts file content to buffer form: LF line ends,
// no trailing newline. writeFile restores the trailing newline.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSuffix(s, "\n")
}

// listFiles collects relative file paths under root for quick-open,
// skipping dot directories, up to max entries.
func listFiles(root string, max int) []string {
	var out []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return nil
		}
		out = append(out, rel)
		if len(out) >= max {
			return filepath.SkipAll
		}
		return nil
	})
	sort.Strings(out)
	return out
}

func (t *Host) drawMatches(ms []fuzzy.Match) {
	width, height := t.screen.Size()
	base := t.hl.Base()
	for i := 0; i < quickOpenRows; i++ {
		row := height - 2 - i
		if row < 0 {
			break
		}
		st := base
		text := ""
		if i < len(ms) {
			text = ms[i].Text
			if i == 0 {
				st = base.Reverse(true)
			}
		}
		x := drawText(t.screen, 0, row, width, text, st)
		for ; x < width; x++ {
			t.screen.SetContent(x, row, ' ', nil, base)
		}
	}
}
