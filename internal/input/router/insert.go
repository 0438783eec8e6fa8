package router

import (
	"strings"

	"gdnvim/internal/input/key"
)

// handleInsert intercepts only what insert mode must own: Escape runs
// the post-insert sync, Ctrl/Alt combos keep their engine meanings, and
// everything else stays with the widget so IME, autocomplete and
// bracket pairing keep working. With Strict set, everything else is
// forwarded to the engine instead.
func (r *Router) handleInsert(ev key.Event) bool {
	if ev.IsEscape() {
		r.macros.record("<Esc>")
		r.clearPending()
		r.selectedReg = 0
		r.count = ""
		r.clearChord()
		r.local("leave-insert")
		r.engine.LeaveInsert()
		return true
	}

	// Ctrl+B leaves insert and enters visual block.
	if ev.Modifiers.HasCtrl() && ev.IsRune() && (ev.Rune == 'b' || ev.Rune == 'B') {
		r.macros.record("<Esc>")
		r.engine.LeaveInsert()
		r.visualVariant = '\x16'
		if r.send("<C-v>") {
			r.clearChord()
		}
		return true
	}

	if ev.IsModified() {
		// Composed characters can arrive with a stale Ctrl flag from
		// some IMEs. Only bracketed notation is a real engine command.
		if s := ev.EngineString(); strings.HasPrefix(s, "<") {
			r.send(s)
			return true
		}
		return false
	}

	if r.cfg.Strict {
		if s := notationFor(ev); s != "" {
			r.send(s)
			return true
		}
		return false
	}

	r.recordInsertKey(ev)
	return false
}

// handleReplace mirrors handleInsert, plus the overwrite step: the rune
// under the caret is removed so the widget's native insert lands as a
// replacement.
func (r *Router) handleReplace(ev key.Event) bool {
	if ev.IsEscape() {
		r.macros.record("<Esc>")
		r.clearPending()
		r.selectedReg = 0
		r.count = ""
		r.clearChord()
		r.local("leave-insert")
		r.engine.LeaveInsert()
		return true
	}

	if ev.IsModified() {
		if s := ev.EngineString(); strings.HasPrefix(s, "<") {
			r.send(s)
			return true
		}
		return false
	}

	// In strict handling the engine performs the overwrite itself, so
	// the caret-rune removal below is skipped along with the widget
	// insert.
	if r.cfg.Strict {
		if s := notationFor(ev); s != "" {
			r.send(s)
			return true
		}
		return false
	}

	r.recordInsertKey(ev)

	if ev.IsChar() {
		line, col := r.widget.Caret()
		runes := []rune(r.widget.Line(line))
		if col < len(runes) {
			r.widget.SetLine(line, string(runes[:col])+string(runes[col+1:]))
		}
	}
	return false
}

// recordInsertKey captures text-mode keys for macro replay. Arrow and
// other navigation keys are left out, as is anything the widget will
// not change text with.
func (r *Router) recordInsertKey(ev key.Event) {
	switch ev.Key {
	case key.KeyBackspace:
		r.macros.record("<BS>")
	case key.KeyEnter:
		r.macros.record("<CR>")
	case key.KeyDelete:
		r.macros.record("<Del>")
	case key.KeyTab:
		r.macros.record("<Tab>")
	case key.KeyRune:
		if ev.Rune != 0 {
			r.macros.record(notationFor(ev))
		}
	}
}
