package router

import (
	"unicode"

	"gdnvim/internal/input/key"
)

// chordIn reports whether the current chord is one of the given
// prefixes.
func (r *Router) chordIn(chords ...string) bool {
	for _, c := range chords {
		if r.chord == c {
			return true
		}
	}
	return false
}

// handleNormal drives normal, visual, and operator-pending modes. The
// handlers run in a fixed order and the chord slot carries the last
// forwarded key, so a pending prefix suppresses the bare meaning of
// its second key: f after g is gf, t after z is zt, m after [ is [m.
func (r *Router) handleNormal(ev key.Event) bool {
	plain := ev.IsChar() && !ev.IsModified()

	// A chosen register owns the next operator sequence.
	if r.selectedReg != 0 {
		if consumed, handled := r.handleSelectedRegister(ev); handled {
			return consumed
		}
	}

	// Escape drops every half-typed prefix on both sides before the
	// engine sees it.
	if ev.IsEscape() {
		r.clearPending()
		r.count = ""
		r.clearChord()
		r.send("<Esc>")
		return true
	}

	// gq armed: the next key completes the format operator.
	if r.chord == "gq" && plain {
		if ev.Rune == 'q' {
			r.send("gqq")
		} else {
			r.send("gq" + notationFor(ev))
		}
		r.clearChord()
		return true
	}

	if ev.Modifiers.HasCtrl() && ev.IsRune() {
		switch unicode.ToLower(ev.Rune) {
		case 'b':
			if r.isVisualMode() {
				r.toggleVisualBlock()
			} else {
				r.pageUp()
			}
			return true
		case 'f':
			r.pageDown()
			return true
		case 'd':
			r.halfPageDown()
			return true
		case 'u':
			r.halfPageUp()
			return true
		case 'y':
			r.cancelPendingOperator()
			r.scrollViewportUp()
			return true
		case 'e':
			r.cancelPendingOperator()
			r.scrollViewportDown()
			return true
		case 'a':
			r.send("<C-a>")
			return true
		case 'x':
			r.send("<C-x>")
			return true
		case 'o':
			r.send("<C-o>")
			return true
		case 'i':
			r.send("<C-i>")
			return true
		case 'r':
			r.send("<C-r>")
			return true
		case 'g':
			r.cancelPendingOperator()
			r.showFileInfo()
			return true
		}
		// Anything else falls through and is forwarded in notation.
	}

	// Visual o swaps the selection anchor engine-side; the selection
	// is pulled back so the widget tracks the new caret end.
	if plain && ev.Rune == 'o' && r.isVisualMode() && r.chord != "z" {
		r.visualSwapAnchor()
		return true
	}

	if plain {
		switch ev.Rune {
		case ':':
			r.openCommandLine()
			return true
		case '/':
			r.openSearch(true)
			return true
		case '?':
			r.openSearch(false)
			return true
		case '*':
			r.searchWord("*")
			return true
		case '#':
			r.searchWord("#")
			return true
		case 'n':
			r.searchNext(true)
			return true
		case 'N':
			r.searchNext(false)
			return true
		}
	}

	if plain && ev.Rune == 'u' && r.chord != "g" {
		r.send("u")
		return true
	}

	// Find-char operators wait for their target character. After g,
	// z, i, or a the same keys belong to a compound instead.
	if plain {
		switch {
		case ev.Rune == 'f' && !r.chordIn("g", "i", "a"):
			r.armPending(pendingChar, 'f')
			return true
		case ev.Rune == 'F' && !r.chordIn("i", "a"):
			r.armPending(pendingChar, 'F')
			return true
		case ev.Rune == 't' && !r.chordIn("g", "z", "i", "a"):
			r.armPending(pendingChar, 't')
			return true
		case ev.Rune == 'T' && !r.chordIn("g", "i", "a"):
			r.armPending(pendingChar, 'T')
			return true
		}
	}

	if plain && ev.Rune == ';' {
		r.repeatFindChar(true)
		r.send(";")
		return true
	}
	if plain && ev.Rune == ',' {
		r.repeatFindChar(false)
		r.send(",")
		return true
	}

	if plain && ev.Rune == '%' {
		r.bracketMatchJump()
		r.send("%")
		return true
	}

	// Count digits are forwarded as typed; the local buffer only
	// disambiguates 0 and feeds register operator formats.
	if plain && ev.Rune >= '0' && ev.Rune <= '9' && (ev.Rune != '0' || r.count != "") {
		r.pushCountDigit(ev.Rune)
		r.send(string(ev.Rune))
		return true
	}

	// Line motions move the widget immediately and still forward, so
	// the engine's column stays in step. After g these are the
	// display-line variants instead.
	if plain && r.chord != "g" {
		switch ev.Rune {
		case '0':
			r.moveLineStart()
			r.send("0")
			return true
		case '^':
			r.moveFirstNonBlank()
			r.send("^")
			return true
		case '$':
			r.moveLineEnd()
			r.send("$")
			return true
		}
	}

	if plain && (ev.Rune == '{' || ev.Rune == '}') && !r.chordIn("[", "]") {
		r.send(string(ev.Rune))
		return true
	}

	if plain {
		switch ev.Rune {
		case 'x':
			if r.chord != "g" {
				r.send("x")
				return true
			}
		case 'X', 'Y', 'D', 'C', 's', 'S', '~':
			r.send(string(ev.Rune))
			return true
		}
	}

	if plain && ev.Rune == 'r' {
		r.armPending(pendingChar, 'r')
		return true
	}
	if plain && ev.Rune == 'R' && r.chord != "z" {
		r.send("R")
		return true
	}

	if plain && ev.Rune == 'm' && !r.chordIn("[", "]") {
		r.armPending(pendingMark, 'm')
		return true
	}
	// In operator-pending and visual modes ' and ` are text-object
	// delimiters (ci', vi`) and must reach the engine untouched.
	if plain && (ev.Rune == '\'' || ev.Rune == '`') && !r.isOperatorPending() && !r.isVisualMode() {
		r.armPending(pendingMark, ev.Rune)
		return true
	}

	if plain && ev.Rune == 'q' && r.chord != "g" {
		if r.macros.recording != 0 {
			r.stopRecording()
		} else {
			r.armPending(pendingMacro, 'q')
		}
		return true
	}
	if plain && ev.Rune == '@' {
		r.armPending(pendingMacro, '@')
		return true
	}

	if plain && ev.Rune == '"' && !r.isOperatorPending() && !r.isVisualMode() {
		r.clearPending()
		r.clearChord()
		r.regWait = true
		r.touchChordClock()
		return true
	}

	// An armed indent operator takes the next key as its motion.
	if r.chord == ">" && plain && ev.Rune != '>' {
		r.send(">" + notationFor(ev))
		r.clearChord()
		return true
	}
	if r.chord == "<" && plain && ev.Rune != '<' {
		r.send("<LT>" + notationFor(ev))
		r.clearChord()
		return true
	}

	if plain && ev.Rune == '>' {
		if r.chord == ">" {
			r.send(">>")
			r.clearChord()
		} else {
			r.setChord(">")
		}
		return true
	}
	if plain && ev.Rune == '<' {
		if r.chord == "<" {
			r.send("<LT><LT>")
			r.clearChord()
		} else {
			r.setChord("<")
		}
		return true
	}

	// g is held back entirely; the tail resolves the second key.
	if plain && ev.Rune == 'g' && r.chord != "g" {
		r.setChord("g")
		return true
	}

	if plain && (ev.Rune == '[' || ev.Rune == ']') && !r.chordIn("[", "]") {
		r.setChord(string(ev.Rune))
		return true
	}

	if plain && ev.Rune == 'K' {
		r.showDocumentation()
		return true
	}

	if r.chord == "[" && plain {
		switch ev.Rune {
		case '[', ']', '{', '(', 'm', 'p':
			r.send("[" + string(ev.Rune))
			r.clearChord()
			return true
		}
		r.clearChord()
	}
	if r.chord == "]" && plain {
		switch ev.Rune {
		case ']', '[', '}', ')', 'm', 'p':
			r.send("]" + string(ev.Rune))
			r.clearChord()
			return true
		}
		r.clearChord()
	}

	if plain && ev.Rune == 'J' && r.chord != "g" {
		r.send("J")
		return true
	}

	// H/M/L are viewport motions and valid in every context, so a
	// pending operator stays armed for the engine to complete. After
	// z they are fold and sideways-scroll completions instead.
	if plain && (ev.Rune == 'H' || ev.Rune == 'M' || ev.Rune == 'L') && r.chord != "z" {
		r.send(string(ev.Rune))
		return true
	}

	if plain && ev.Rune == 'Z' {
		if r.chord == "Z" {
			r.saveAndClose()
			r.clearChord()
		} else {
			r.setChord("Z")
		}
		return true
	}
	if plain && ev.Rune == 'Q' && r.chord == "Z" {
		r.closeDiscard()
		r.clearChord()
		return true
	}
	if r.chord == "Z" {
		r.clearChord()
	}

	// v and V are forwarded below like any other key; the variant is
	// noted so the mode indicator can tell the visual flavors apart
	// before the engine reports back.
	if plain && ev.Rune == 'v' {
		r.visualVariant = 'v'
	}
	if plain && ev.Rune == 'V' {
		r.visualVariant = 'V'
	}

	keys := ev.EngineString()
	if keys == "" {
		return false
	}

	if r.chord == "g" {
		r.gPrefixed(keys)
		return true
	}

	// User binds replace only the default forward, never a built-in
	// handler, a pending operator's motion, or a z completion.
	if !r.isOperatorPending() && !r.isVisualMode() && r.chord != "z" && r.runBind(keys) {
		return true
	}

	completed := r.send(keys)
	scrollHandled := false
	if completed {
		scrollHandled = r.handleScrollChord(keys)
	}
	if !scrollHandled && !r.isInsertMode() && !r.isReplaceMode() {
		if r.isVisualMode() {
			// Only text-object prefixes matter as chords here.
			if keys == "i" || keys == "a" {
				r.setChord(keys)
			}
		} else {
			r.setChord(keys)
		}
	}
	return true
}

// gPrefixed resolves the second key of a g chord. A handful run
// locally against the widget or the host; the rest forward with the
// held-back g restored, which keeps operators like gu and motions
// like gg intact.
func (r *Router) gPrefixed(keys string) {
	switch keys {
	case "x":
		r.openURLUnderCursor()
	case "f":
		r.gotoFileUnderCursor()
	case "d":
		r.gotoDefinition()
	case "a":
		r.showCharInfo()
	case "J":
		r.joinNoSpace()
	case "e":
		r.wordEndBackward()
		r.send("ge")
	case "j":
		r.displayLineDown()
	case "k":
		r.displayLineUp()
	case "0":
		r.displayLineStart()
	case "$":
		r.displayLineEnd()
	case "^":
		r.displayLineFirstNonBlank()
	case "t":
		r.local("next-tab")
		r.editor.NextTab()
	case "T":
		r.local("prev-tab")
		r.editor.PrevTab()
	case "v":
		r.toggleVisualBlock()
	case "q":
		// Format operator: hold the chord for its motion.
		r.setChord("gq")
		return
	default:
		r.send("g" + keys)
	}
	r.clearChord()
}
