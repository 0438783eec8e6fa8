package router

import "unicode"

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// runeLen is the caret-column length of a line.
func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// firstNonBlankCol returns the column of the first non-whitespace rune,
// or 0 for a blank line.
func firstNonBlankCol(s string) int {
	col := 0
	for _, c := range s {
		if !unicode.IsSpace(c) {
			return col
		}
		col++
	}
	return 0
}

// moveCaret clamps to the document and places the caret.
func (r *Router) moveCaret(line, col int) {
	lc := r.widget.LineCount()
	if lc == 0 {
		r.widget.SetCaret(0, 0)
		return
	}
	line = clamp(line, 0, lc-1)
	col = clamp(col, 0, runeLen(r.widget.Line(line)))
	r.widget.SetCaret(line, col)
}

func (r *Router) moveLineStart() {
	line, _ := r.widget.Caret()
	r.moveCaret(line, 0)
}

func (r *Router) moveFirstNonBlank() {
	line, _ := r.widget.Caret()
	r.moveCaret(line, firstNonBlankCol(r.widget.Line(line)))
}

func (r *Router) moveLineEnd() {
	line, _ := r.widget.Caret()
	n := runeLen(r.widget.Line(line))
	r.moveCaret(line, max(0, n-1))
}

// wordEndBackward moves to the end of the previous word (ge). Steps
// back one column, then keeps stepping over whitespace, crossing line
// boundaries until a non-blank rune or the start of the document.
func (r *Router) wordEndBackward() {
	line, col := r.widget.Caret()
	col--
	for {
		if col < 0 {
			line--
			if line < 0 {
				r.moveCaret(0, 0)
				return
			}
			col = runeLen(r.widget.Line(line)) - 1
			if col < 0 {
				continue
			}
		}
		runes := []rune(r.widget.Line(line))
		if col < len(runes) && !unicode.IsSpace(runes[col]) {
			r.moveCaret(line, col)
			return
		}
		col--
	}
}

type bracketPair struct {
	match   rune
	forward bool
}

var bracketPairs = map[rune]bracketPair{
	'(': {')', true},
	'[': {']', true},
	'{': {'}', true},
	'<': {'>', true},
	')': {'(', false},
	']': {'[', false},
	'}': {'{', false},
	'>': {'<', false},
}

// bracketMatchJump implements the local half of %: if the caret sits
// on a bracket, jump to its match.
func (r *Router) bracketMatchJump() {
	line, col := r.widget.Caret()
	if line >= r.widget.LineCount() {
		return
	}
	runes := []rune(r.widget.Line(line))
	if col >= len(runes) {
		return
	}
	open := runes[col]
	pair, ok := bracketPairs[open]
	if !ok {
		return
	}
	depth := 1
	if pair.forward {
		c := col + 1
		for l := line; l < r.widget.LineCount(); l++ {
			rs := []rune(r.widget.Line(l))
			for ; c < len(rs); c++ {
				switch rs[c] {
				case open:
					depth++
				case pair.match:
					depth--
					if depth == 0 {
						r.moveCaret(l, c)
						return
					}
				}
			}
			c = 0
		}
		return
	}
	c := col - 1
	for l := line; l >= 0; l-- {
		rs := []rune(r.widget.Line(l))
		if c < 0 {
			c = len(rs) - 1
		}
		for ; c >= 0; c-- {
			if c >= len(rs) {
				continue
			}
			switch rs[c] {
			case open:
				depth++
			case pair.match:
				depth--
				if depth == 0 {
					r.moveCaret(l, c)
					return
				}
			}
		}
		c = -1
	}
}

// scrollViewportUp shifts the view one line toward the start without
// moving the caret (Ctrl+Y).
func (r *Router) scrollViewportUp() {
	r.macros.record("<C-y>")
	top := r.widget.FirstVisibleLine()
	r.widget.SetFirstVisibleLine(max(0, top-1))
	r.local("scroll-line-up")
}

// scrollViewportDown shifts the view one line toward the end (Ctrl+E).
func (r *Router) scrollViewportDown() {
	r.macros.record("<C-e>")
	top := r.widget.FirstVisibleLine()
	limit := max(0, r.widget.LineCount()-r.widget.VisibleLineCount())
	r.widget.SetFirstVisibleLine(clamp(top+1, 0, limit))
	r.local("scroll-line-down")
}

func (r *Router) pageUp() {
	r.cancelPendingOperator()
	r.send("<C-b>")
}

func (r *Router) pageDown() {
	r.cancelPendingOperator()
	r.send("<C-f>")
}

func (r *Router) halfPageUp() {
	r.cancelPendingOperator()
	r.send("<C-u>")
}

func (r *Router) halfPageDown() {
	r.cancelPendingOperator()
	r.send("<C-d>")
}

// wrapPosition locates col within a line's wrap segments.
func wrapPosition(segs []string, col int) (idx, offset int) {
	for i, seg := range segs {
		n := runeLen(seg)
		if col < n || i == len(segs)-1 {
			return i, col
		}
		col -= n
	}
	return 0, col
}

// wrapColumn converts a segment index and offset back to a line column.
func wrapColumn(segs []string, idx, offset int) int {
	col := 0
	for i := 0; i < idx && i < len(segs); i++ {
		col += runeLen(segs[i])
	}
	if idx < len(segs) {
		offset = clamp(offset, 0, max(0, runeLen(segs[idx])-1))
	}
	return col + offset
}

// displayLineDown moves one display line down (gj), descending through
// wrap segments before crossing to the next buffer line.
func (r *Router) displayLineDown() {
	r.macros.record("gj")
	line, col := r.widget.Caret()
	segs := r.widget.WrapSegments(line)
	idx, off := wrapPosition(segs, col)
	if idx+1 < len(segs) {
		r.moveCaret(line, wrapColumn(segs, idx+1, off))
	} else if line+1 < r.widget.LineCount() {
		next := r.widget.WrapSegments(line + 1)
		r.moveCaret(line+1, wrapColumn(next, 0, off))
	}
	r.local("display-line-down")
}

// displayLineUp moves one display line up (gk).
func (r *Router) displayLineUp() {
	r.macros.record("gk")
	line, col := r.widget.Caret()
	segs := r.widget.WrapSegments(line)
	idx, off := wrapPosition(segs, col)
	if idx > 0 {
		r.moveCaret(line, wrapColumn(segs, idx-1, off))
	} else if line > 0 {
		prev := r.widget.WrapSegments(line - 1)
		r.moveCaret(line-1, wrapColumn(prev, max(0, len(prev)-1), off))
	}
	r.local("display-line-up")
}

// displayLineStart moves to the start of the current display line (g0).
func (r *Router) displayLineStart() {
	r.macros.record("g0")
	line, col := r.widget.Caret()
	segs := r.widget.WrapSegments(line)
	idx, _ := wrapPosition(segs, col)
	r.moveCaret(line, wrapColumn(segs, idx, 0))
	r.local("display-line-start")
}

// displayLineEnd moves to the last column of the current display line
// (g$).
func (r *Router) displayLineEnd() {
	r.macros.record("g$")
	line, col := r.widget.Caret()
	segs := r.widget.WrapSegments(line)
	idx, _ := wrapPosition(segs, col)
	end := 0
	if idx < len(segs) {
		end = max(0, runeLen(segs[idx])-1)
	}
	r.moveCaret(line, wrapColumn(segs, idx, end))
	r.local("display-line-end")
}

// displayLineFirstNonBlank moves to the first non-blank rune of the
// current display line (g^).
func (r *Router) displayLineFirstNonBlank() {
	r.macros.record("g^")
	line, col := r.widget.Caret()
	segs := r.widget.WrapSegments(line)
	idx, _ := wrapPosition(segs, col)
	off := 0
	if idx < len(segs) {
		off = firstNonBlankCol(segs[idx])
	}
	r.moveCaret(line, wrapColumn(segs, idx, off))
	r.local("display-line-first")
}

func (r *Router) foldToggle() {
	line, _ := r.widget.Caret()
	r.widget.ToggleFold(line)
	r.local("fold-toggle")
}

func (r *Router) foldOpen() {
	line, _ := r.widget.Caret()
	r.widget.Unfold(line)
	r.local("fold-open")
}

func (r *Router) foldClose() {
	line, _ := r.widget.Caret()
	if r.widget.CanFold(line) {
		r.widget.Fold(line)
	}
	r.local("fold-close")
}

func (r *Router) foldOpenAll() {
	r.widget.UnfoldAll()
	r.local("fold-open-all")
}

func (r *Router) foldCloseAll() {
	r.widget.FoldAll()
	r.local("fold-close-all")
}

// handleScrollChord resolves z-prefixed chords after the keys have been
// forwarded. zz/zt/zb stay engine-side. Fold chords act on the widget.
// Reports whether the chord consumed the pending z.
func (r *Router) handleScrollChord(keys string) bool {
	if r.chord != "z" {
		return false
	}
	switch keys {
	case "z", "t", "b":
		r.clearChord()
		return false
	case "a":
		r.clearChord()
		r.foldToggle()
		return true
	case "o":
		r.clearChord()
		r.foldOpen()
		return true
	case "c":
		r.clearChord()
		r.foldClose()
		return true
	case "M":
		r.clearChord()
		r.foldCloseAll()
		return true
	case "R":
		r.clearChord()
		r.foldOpenAll()
		return true
	}
	return false
}
