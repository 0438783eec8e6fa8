package router

// setMark stores the caret position under mark c.
func (r *Router) setMark(c rune) {
	line, col := r.widget.Caret()
	r.marks[c] = position{line: line, col: col}
	r.local("set-mark")
}

// jumpToMarkLine implements '{mark}: the mark's line, first non-blank
// column.
func (r *Router) jumpToMarkLine(c rune) {
	p, ok := r.marks[c]
	if !ok {
		r.editor.Echo("Mark not set: " + string(c))
		return
	}
	r.addToJumpList()
	line := clamp(p.line, 0, r.widget.LineCount()-1)
	r.moveCaret(line, firstNonBlankCol(r.widget.Line(line)))
	r.engine.PushCursor()
	r.local("jump-mark-line")
}

// jumpToMarkPosition implements `{mark}: the exact stored position,
// clamped to the current buffer.
func (r *Router) jumpToMarkPosition(c rune) {
	p, ok := r.marks[c]
	if !ok {
		r.editor.Echo("Mark not set: " + string(c))
		return
	}
	r.addToJumpList()
	line := clamp(p.line, 0, r.widget.LineCount()-1)
	col := clamp(p.col, 0, runeLen(r.widget.Line(line)))
	r.moveCaret(line, col)
	r.engine.PushCursor()
	r.local("jump-mark-position")
}
