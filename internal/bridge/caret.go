package bridge

import (
	"unicode/utf8"

	"gdnvim/internal/host"
	"gdnvim/internal/nvim"
)

// byteToChar converts a 0-based byte offset into line to a character
// column, clamped to the line.
func byteToChar(line string, byteCol int) int {
	if byteCol <= 0 {
		return 0
	}
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return utf8.RuneCountInString(line[:byteCol])
}

// charToByte converts a character column to a 0-based byte offset into
// line, clamped to the line.
func charToByte(line string, charCol int) int {
	if charCol <= 0 {
		return 0
	}
	n := 0
	for i := range line {
		if n == charCol {
			return i
		}
		n++
	}
	return len(line)
}

// enginePos maps a widget caret to the engine's cursor convention:
// 1-based row, 0-based byte column.
func enginePos(line, col int, lineText string) nvim.Position {
	return nvim.Position{
		Row: int64(line + 1),
		Col: int64(charToByte(lineText, col)),
	}
}

// noteSynced records the last caret position agreed with the engine so
// the widget's echoing caret event does not bounce back.
func (b *Bridge) noteSynced(line, col int) {
	b.lastSyncedLine = line
	b.lastSyncedCol = col
	b.haveSynced = true
}

// PushCursor uploads the widget caret to the engine.
func (b *Bridge) PushCursor() {
	c := b.engine()
	if c == nil {
		return
	}
	line, col := b.widget.Caret()
	if err := c.SetCursor(b.ctx, enginePos(line, col, b.widget.Line(line))); err != nil {
		b.noteRPC(err)
		return
	}
	b.noteSynced(line, col)
}

// PullCursor moves the widget caret to the engine's cursor.
func (b *Bridge) PullCursor() {
	c := b.engine()
	if c == nil {
		return
	}
	pos, err := c.Cursor(b.ctx)
	if err != nil {
		b.noteRPC(err)
		return
	}
	b.applyEngineCursor(pos)
}

// applyEngineCursor maps an engine cursor (1-based row, byte column)
// onto the widget caret, clamped to the current content.
func (b *Bridge) applyEngineCursor(pos nvim.Position) {
	line := int(pos.Row) - 1
	if line < 0 {
		line = 0
	}
	if last := b.widget.LineCount() - 1; line > last {
		line = last
	}
	col := byteToChar(b.widget.Line(line), int(pos.Col))
	b.widget.SetCaret(line, col)
	b.noteSynced(line, col)
}

// toWidgetPos maps an engine position to widget coordinates, clamped.
func (b *Bridge) toWidgetPos(pos nvim.Position) (line, col int) {
	line = int(pos.Row) - 1
	if line < 0 {
		line = 0
	}
	if last := b.widget.LineCount() - 1; line > last {
		line = last
	}
	return line, byteToChar(b.widget.Line(line), int(pos.Col))
}

// handleCaretMoved syncs a user caret move to the engine. Moves the
// bridge itself caused, insert-mode typing, and visual-mode motion are
// all excluded; the engine owns the cursor in those states or learns
// it by another path.
func (b *Bridge) handleCaretMoved(ev host.Event) {
	if b.tracker.ApplyingFromEngine() || b.exitingInsert || b.mouseSyncing {
		return
	}
	if b.insertLike() || b.visualLike() {
		return
	}
	if b.haveSynced && ev.Line == b.lastSyncedLine && ev.Col == b.lastSyncedCol {
		return
	}
	b.PushCursor()
}
