package router

import "gdnvim/internal/input/key"

type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingChar  // f F t T r await their target character
	pendingMark  // m ' ` await a mark letter
	pendingMacro // q @ await a register letter
)

// pendingOp is the single slot for a one-shot operator awaiting its
// argument key.
type pendingOp struct {
	kind pendingKind
	op   rune
}

// armPending stores a pending operator, dropping any other
// half-entered state first.
func (r *Router) armPending(kind pendingKind, op rune) {
	r.clearPending()
	r.pend = pendingOp{kind: kind, op: op}
	r.touchChordClock()
}

// handlePendingOp feeds a key to the armed slot. A false return means
// the slot did not consume the event; the key continues through the
// normal dispatch, so a canceling Escape still reaches the engine.
func (r *Router) handlePendingOp(ev key.Event) bool {
	if ev.IsEscape() || ev.Modifiers.HasCtrl() || ev.Modifiers.HasAlt() || ev.Modifiers.HasMeta() {
		r.pend = pendingOp{}
		return false
	}

	switch r.pend.kind {
	case pendingChar:
		return r.finishCharOp(ev)
	case pendingMark:
		return r.finishMarkOp(ev)
	case pendingMacro:
		return r.finishMacroOp(ev)
	default:
		return false
	}
}

func (r *Router) finishCharOp(ev key.Event) bool {
	op := r.pend.op
	if !ev.IsChar() {
		r.pend = pendingOp{}
		return false
	}
	r.pend = pendingOp{}

	// f/t move the widget immediately; the forwarded keys keep the
	// engine in step and make the motion repeatable there too.
	switch op {
	case 'f':
		r.findCharForward(ev.Rune, false)
	case 'F':
		r.findCharBackward(ev.Rune, false)
	case 't':
		r.findCharForward(ev.Rune, true)
	case 'T':
		r.findCharBackward(ev.Rune, true)
	}
	r.send(string(op) + notationFor(ev))
	return true
}

func (r *Router) finishMarkOp(ev key.Event) bool {
	op := r.pend.op
	if !ev.IsChar() {
		r.pend = pendingOp{}
		return false
	}
	if ev.Rune < 'a' || ev.Rune > 'z' {
		r.pend = pendingOp{}
		return false
	}
	r.pend = pendingOp{}

	switch op {
	case 'm':
		r.setMark(ev.Rune)
	case '\'':
		r.jumpToMarkLine(ev.Rune)
	case '`':
		r.jumpToMarkPosition(ev.Rune)
	}
	return true
}

func (r *Router) finishMacroOp(ev key.Event) bool {
	op := r.pend.op
	if !ev.IsChar() {
		r.pend = pendingOp{}
		return false
	}
	r.pend = pendingOp{}
	c := ev.Rune

	switch op {
	case 'q':
		if c >= 'a' && c <= 'z' {
			r.startRecording(c)
		}
	case '@':
		switch {
		case c == '@':
			r.replayLastMacro()
		case c == ':':
			r.repeatLastExCommand()
		case c >= 'a' && c <= 'z':
			r.playMacro(c)
		}
	}
	return true
}

// handleRegisterPrompt answers the '"' prompt. Any key that is not a
// register name cancels the prompt and flows on, so no prompt can
// outlive a return to normal mode.
func (r *Router) handleRegisterPrompt(ev key.Event) bool {
	if ev.IsEscape() {
		r.regWait = false
		return true
	}
	if ev.IsChar() && isRegisterName(ev.Rune) {
		r.regWait = false
		r.selectedReg = ev.Rune
		r.touchChordClock()
		return true
	}
	r.regWait = false
	return false
}
