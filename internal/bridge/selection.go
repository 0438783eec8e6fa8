package bridge

import (
	"unicode/utf8"

	"gdnvim/internal/host"
)

// PullSelection mirrors the engine's visual selection onto the widget.
// The widget selection is exclusive at its end point, so the engine's
// inclusive end gains one column; linewise visual covers whole lines.
func (b *Bridge) PullSelection() {
	c := b.engine()
	if c == nil {
		return
	}
	start, err := c.VisualStart(b.ctx)
	if err != nil {
		b.noteRPC(err)
		return
	}
	cur, err := c.Cursor(b.ctx)
	if err != nil {
		b.noteRPC(err)
		return
	}
	sl, sc := b.toWidgetPos(start)
	cl, cc := b.toWidgetPos(cur)

	if b.router.VisualVariant() == 'V' {
		first, last := sl, cl
		if first > last {
			first, last = last, first
		}
		b.widget.Select(first, 0, last, utf8.RuneCountInString(b.widget.Line(last)))
		return
	}

	if cl > sl || (cl == sl && cc >= sc) {
		b.widget.Select(sl, sc, cl, cc+1)
	} else {
		b.widget.Select(cl, cc, sl, sc+1)
	}
}

// handleMouseSelection maps a widget mouse selection to an engine
// visual selection. The guard keeps the widget's re-entrant caret
// signal from turning the round-trip into a cursor push.
func (b *Bridge) handleMouseSelection(ev host.Event) {
	if b.tracker.ApplyingFromEngine() || b.exitingInsert {
		return
	}
	c := b.engine()
	if c == nil {
		return
	}
	fl, fc := clampPos(b.widget, ev.FromLine, ev.FromCol)
	tl, tc := clampPos(b.widget, ev.ToLine, ev.ToCol)
	from := enginePos(fl, fc, b.widget.Line(fl))
	to := enginePos(tl, tc, b.widget.Line(tl))

	b.mouseSyncing = true
	mode, err := c.SetVisualSelection(b.ctx, from, to)
	b.mouseSyncing = false
	if err != nil {
		b.noteRPC(err)
		return
	}
	if mode != "" {
		b.router.SetEngineMode(mode)
	}
}

// handleMouseClick drops an engine-side visual selection when the user
// clicks instead of dragging. Plain clicks outside visual mode reach
// the engine through the ordinary caret sync.
func (b *Bridge) handleMouseClick(ev host.Event) {
	if !b.visualLike() {
		return
	}
	b.post("<Esc>")
	b.router.SetEngineMode("n")
	b.widget.Deselect()
	b.PushCursor()
}

func clampPos(w host.TextWidget, line, col int) (int, int) {
	if line < 0 {
		line = 0
	}
	if last := w.LineCount() - 1; line > last {
		line = last
	}
	if col < 0 {
		col = 0
	}
	if n := utf8.RuneCountInString(w.Line(line)); col > n {
		col = n
	}
	return line, col
}
