package router

import (
	"strconv"

	"gdnvim/internal/input/key"
)

// isRegisterName reports whether c can answer the '"' prompt: named
// registers a-z, the clipboard registers + and *, the black hole _,
// and the yank register 0.
func isRegisterName(c rune) bool {
	return (c >= 'a' && c <= 'z') || c == '+' || c == '*' || c == '_' || c == '0'
}

func registerFormat(reg rune, count, op string) string {
	return `"` + string(reg) + count + op
}

// takeCountStr renders the pending count for a register operator,
// empty when it is one.
func (r *Router) takeCountStr() string {
	n := r.takeCount()
	if n <= 1 {
		return ""
	}
	return strconv.Itoa(n)
}

// handleSelectedRegister dispatches keys typed after a register was
// chosen. handled false means the key was not part of a register
// operation; the selection is canceled and the key flows on to the
// regular normal-mode handling.
//
// Count digits are held locally here instead of being forwarded: the
// operator format string carries them, so the engine sees the count
// exactly once.
func (r *Router) handleSelectedRegister(ev key.Event) (consumed, handled bool) {
	reg := r.selectedReg
	plain := ev.IsChar() && !ev.IsModified()

	if plain && ev.Rune >= '0' && ev.Rune <= '9' {
		if ev.Rune != '0' || r.count != "" {
			r.pushCountDigit(ev.Rune)
			return true, true
		}
	}

	if plain {
		switch ev.Rune {
		case 'y', 'd', 'c':
			op := string(ev.Rune)
			if r.chord == op {
				// Doubled operator: whole lines.
				r.noteRegisterUse(reg)
				r.send(registerFormat(reg, r.takeCountStr(), op+op))
				r.selectedReg = 0
				r.clearChord()
				return true, true
			}
			r.setChord(op)
			return true, true
		case 'p':
			r.noteRegisterUse(reg)
			r.send(registerFormat(reg, "", "p"))
			r.selectedReg = 0
			r.count = ""
			return true, true
		case 'P':
			r.noteRegisterUse(reg)
			r.send(registerFormat(reg, "", "P"))
			r.selectedReg = 0
			r.count = ""
			return true, true
		}
	}

	// Operator armed: any other plain key completes it as a motion.
	if plain && (r.chord == "y" || r.chord == "d" || r.chord == "c") {
		r.noteRegisterUse(reg)
		r.send(registerFormat(reg, r.takeCountStr(), r.chord+notationFor(ev)))
		r.selectedReg = 0
		r.clearChord()
		return true, true
	}

	r.selectedReg = 0
	r.count = ""
	return false, false
}

// noteRegisterUse remembers that reg was driven through the engine,
// so :registers knows which registers to query back.
func (r *Router) noteRegisterUse(reg rune) {
	r.usedRegs[reg] = struct{}{}
}
