package router

import (
	"fmt"
	"strconv"
	"strings"

	"gdnvim/internal/input/key"
)

// cmdlineState is the : prompt with its bounded history. The buffer
// keeps the leading colon so the prompt can be displayed verbatim.
type cmdlineState struct {
	active  bool
	buf     string
	history []string
	histIdx int
	temp    string
}

func (r *Router) openCommandLine() {
	r.clearPending()
	r.cmdline.active = true
	r.cmdline.buf = ":"
	r.local("command-line")
}

func (r *Router) closeCommandLine() {
	r.cmdline.active = false
	r.cmdline.buf = ""
	r.cmdline.histIdx = -1
	r.cmdline.temp = ""
}

// handleCmdline edits the : prompt. Nothing reaches the engine until
// Enter executes the buffered command.
func (r *Router) handleCmdline(ev key.Event) bool {
	switch {
	case ev.IsEscape():
		r.closeCommandLine()
	case ev.IsEnter():
		r.executeCommand()
	case ev.IsBackspace():
		if len(r.cmdline.buf) > 1 {
			rs := []rune(r.cmdline.buf)
			r.cmdline.buf = string(rs[:len(rs)-1])
		}
		r.cmdline.histIdx = -1
	case ev.Key == key.KeyUp:
		r.cmdlineHistoryUp()
	case ev.Key == key.KeyDown:
		r.cmdlineHistoryDown()
	default:
		if ev.IsChar() && !ev.IsModified() {
			r.cmdline.buf += string(ev.Rune)
			r.cmdline.histIdx = -1
		}
	}
	return true
}

func (r *Router) cmdlineHistoryUp() {
	h := r.cmdline.history
	if len(h) == 0 {
		return
	}
	switch {
	case r.cmdline.histIdx < 0:
		r.cmdline.temp = strings.TrimPrefix(r.cmdline.buf, ":")
		r.cmdline.histIdx = len(h) - 1
	case r.cmdline.histIdx == 0:
		return
	default:
		r.cmdline.histIdx--
	}
	r.cmdline.buf = ":" + h[r.cmdline.histIdx]
}

func (r *Router) cmdlineHistoryDown() {
	if r.cmdline.histIdx < 0 {
		return
	}
	h := r.cmdline.history
	if r.cmdline.histIdx >= len(h)-1 {
		r.cmdline.buf = ":" + r.cmdline.temp
		r.cmdline.histIdx = -1
		return
	}
	r.cmdline.histIdx++
	r.cmdline.buf = ":" + h[r.cmdline.histIdx]
}

func (r *Router) pushHistory(cmd string) {
	h := r.cmdline.history
	if len(h) > 0 && h[len(h)-1] == cmd {
		return
	}
	h = append(h, cmd)
	if limit := r.cfg.HistoryLimit; limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	r.cmdline.history = h
}

// hasLineRange reports whether cmd begins with a line-range specifier.
// Range commands go to the engine verbatim so its range, regex and
// mark semantics apply.
func hasLineRange(cmd string) bool {
	if cmd == "" {
		return false
	}
	switch c := cmd[0]; {
	case c >= '0' && c <= '9':
		return true
	case c == '.' || c == '$' || c == '\'' || c == '+' || c == '-':
		return true
	}
	return false
}

// executeCommand runs the buffered command and closes the prompt.
func (r *Router) executeCommand() {
	cmd := strings.TrimSpace(strings.TrimPrefix(r.cmdline.buf, ":"))
	if cmd != "" {
		r.pushHistory(cmd)
	}
	r.cmdline.histIdx = -1
	r.cmdline.temp = ""

	switch cmd {
	case "":
	case "w":
		r.local("save")
		r.editor.Save()
	case "q":
		r.local("close")
		r.editor.CloseTab(false)
	case "q!":
		r.local("close-discard")
		r.editor.CloseTab(true)
	case "qa", "qall":
		r.local("close-all")
		r.editor.CloseAllTabs(false)
	case "qa!", "qall!":
		r.local("close-all")
		r.editor.CloseAllTabs(true)
	case "wq", "x", "wq!", "x!":
		r.saveAndClose()
	case "wa", "wall":
		r.local("save-all")
		r.editor.SaveAll()
	case "wqa", "wqall", "xa", "xall", "wqa!", "wqall!", "xa!", "xall!":
		r.local("save-all")
		r.editor.SaveAll()
		r.editor.CloseAllTabs(false)
	case "e!", "edit!":
		r.local("reload")
		r.editor.ReloadFromDisk()
	default:
		r.executeCommandTail(cmd)
	}

	r.closeCommandLine()
}

// executeCommandTail dispatches everything past the fixed verb table.
// Order matters: a bare integer and the recognized names must win
// before the prefix families claim them.
func (r *Router) executeCommandTail(cmd string) {
	if n, err := strconv.Atoi(cmd); err == nil && n > 0 {
		r.gotoLine(n)
		return
	}
	if hasLineRange(cmd) {
		r.forwardCommand(cmd)
		return
	}
	switch cmd {
	case "marks":
		r.local("show-marks")
		r.showMarks()
		return
	case "registers", "reg":
		r.local("show-registers")
		r.showRegisters()
		return
	case "jumps", "ju":
		r.local("show-jumps")
		r.showJumps()
		return
	case "changes":
		r.local("show-changes")
		r.showChanges()
		return
	case "ls", "buffers":
		r.local("show-buffers")
		r.showTabs()
		return
	case "e", "edit":
		r.local("quick-open")
		r.editor.QuickOpen()
		return
	case "bn", "bnext":
		r.local("next-tab")
		r.editor.NextTab()
		return
	case "bp", "bprev", "bprevious":
		r.local("prev-tab")
		r.editor.PrevTab()
		return
	case "bd", "bdelete":
		r.local("close")
		r.editor.CloseTab(false)
		return
	case "help", "h":
		r.local("help")
		r.editor.ShowHelp("")
		return
	case "version", "ver":
		r.local("version")
		r.editor.Echo(r.editor.VersionLine())
		return
	}
	if path, ok := strings.CutPrefix(cmd, "e "); ok {
		r.openPath(path)
		return
	}
	if path, ok := strings.CutPrefix(cmd, "edit "); ok {
		r.openPath(path)
		return
	}
	if opt, ok := strings.CutPrefix(cmd, "set "); ok && strings.HasSuffix(opt, "?") {
		r.queryOption(strings.TrimSpace(strings.TrimSuffix(opt, "?")))
		return
	}
	if strings.HasPrefix(cmd, "%s/") || strings.HasPrefix(cmd, "s/") ||
		strings.HasPrefix(cmd, "g/") ||
		cmd == "sort" || strings.HasPrefix(cmd, "sort ") ||
		(strings.HasPrefix(cmd, "t") && len(cmd) > 1) ||
		(strings.HasPrefix(cmd, "m") && len(cmd) > 1) {
		r.forwardCommand(cmd)
		return
	}
	if c := cmd[0]; c >= 'A' && c <= 'Z' {
		r.forwardCommand(cmd)
		return
	}
	r.editor.Echo("Unknown command: " + cmd)
}

// forwardCommand sends the command to the engine verbatim. Results come
// back through the regular buffer event path.
func (r *Router) forwardCommand(cmd string) {
	r.sendRaw(":" + cmd + "<CR>")
}

// gotoLine jumps to a 1-indexed line via the engine so its jump list
// sees the motion.
func (r *Router) gotoLine(n int) {
	r.addToJumpList()
	r.sendRaw(strconv.Itoa(n) + "G")
}

func (r *Router) openPath(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		r.local("quick-open")
		r.editor.QuickOpen()
		return
	}
	r.local("open-file")
	r.editor.OpenFile(path)
}

// queryOption implements :set {opt}? via the engine.
func (r *Router) queryOption(opt string) {
	if opt == "" {
		return
	}
	val, err := r.engine.OptionValue(opt)
	if err != nil {
		r.editor.Echo("Unknown option: " + opt)
		return
	}
	r.local("option-query")
	r.editor.Echo(fmt.Sprintf("%s=%s", opt, val))
}

// saveAndClose implements ZZ and :wq.
func (r *Router) saveAndClose() {
	r.local("save-and-close")
	r.editor.Save()
	r.editor.CloseTab(false)
}

// closeDiscard implements ZQ. The host drops unsaved widget changes and
// the adapter reloads the engine buffer from disk.
func (r *Router) closeDiscard() {
	r.local("close-discard")
	r.editor.CloseTab(true)
}

// repeatLastExCommand implements @:.
func (r *Router) repeatLastExCommand() {
	h := r.cmdline.history
	if len(h) == 0 {
		return
	}
	r.cmdline.buf = ":" + h[len(h)-1]
	r.executeCommand()
}
