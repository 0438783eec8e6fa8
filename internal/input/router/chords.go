package router

import (
	"strconv"
	"time"
)

// setChord arms a multi-key prefix and starts the timeout clock.
func (r *Router) setChord(chord string) {
	r.chord = chord
	r.chordTime = time.Now()
}

func (r *Router) clearChord() {
	r.chord = ""
	r.chordTime = time.Time{}
}

// touchChordClock restarts the timeout clock without changing the
// chord, so a slowly typed count or register does not expire into an
// engine Escape mid-sequence.
func (r *Router) touchChordClock() {
	r.chordTime = time.Now()
}

// cancelPendingOperator aborts a half-typed operator on both sides:
// the engine gets an Escape, the local chord is dropped.
func (r *Router) cancelPendingOperator() {
	if r.chord == "" {
		return
	}
	r.sendRaw("<Esc>")
	r.clearChord()
}

// pushCountDigit appends one digit of a count prefix.
func (r *Router) pushCountDigit(c rune) {
	if len(r.count) < 9 {
		r.count += string(c)
	}
	r.touchChordClock()
}

// takeCount parses and clears the count prefix, defaulting to 1.
func (r *Router) takeCount() int {
	if r.count == "" {
		return 1
	}
	n, err := strconv.Atoi(r.count)
	r.count = ""
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// TickTimeout expires stale chord, count, register, and pending-slot
// state, mirroring the engine's timeoutlen. It applies only outside
// insert, replace, and visual modes. The bridge calls it from its
// poll loop.
func (r *Router) TickTimeout(now time.Time) {
	if r.isInsertMode() || r.isReplaceMode() || r.isVisualMode() {
		return
	}
	if r.chordTime.IsZero() {
		return
	}
	if now.Sub(r.chordTime) <= r.cfg.ChordTimeout {
		return
	}
	if r.chord != "" {
		// The chord keys were already forwarded; release the engine's
		// pending operator as well.
		r.sendRaw("<Esc>")
		r.chord = ""
	}
	r.chordTime = time.Time{}
	r.pend = pendingOp{}
	r.regWait = false
	r.selectedReg = 0
	r.count = ""
}
