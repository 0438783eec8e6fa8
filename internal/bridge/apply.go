package bridge

import (
	"gdnvim/internal/bufsync"
	"gdnvim/internal/nvim"
)

// drainBufEvents applies the queued engine buffer events under the
// counter discipline. Events for a previously bound buffer are
// dropped, and with no binding at all nothing applies.
func (b *Bridge) drainBufEvents(c *nvim.Client) {
	for _, ev := range c.State().TakeBufEvents() {
		if b.buf == 0 || (ev.Buf != 0 && ev.Buf != b.buf) {
			continue
		}
		switch ev.Kind {
		case nvim.BufEventLines:
			ch := bufsync.Change{First: ev.First, Last: ev.Last, Lines: ev.Lines}
			switch b.tracker.OnLines(ev.Tick, ch) {
			case bufsync.VerdictApply:
				b.applyChange(ch)
			case bufsync.VerdictGap:
				b.log.Warn("change counter gap at tick %d, resyncing", ev.Tick)
				b.resync(c)
			}
		case nvim.BufEventChangedTick:
			b.tracker.OnChangedTick(ev.Tick)
		case nvim.BufEventDetach:
			b.log.Warn("engine detached buffer %d", ev.Buf)
			b.tracker.SetAttached(false)
		}
	}
}

// applyChange writes one engine change into the widget with the
// widget's own change signal suppressed.
func (b *Bridge) applyChange(ch bufsync.Change) {
	b.tracker.BeginApply()
	ch.Apply(b.widget)
	b.tracker.EndApply()
}

// resync recovers from a lost event: the widget's content is
// re-uploaded as the new baseline and the subscription renewed. The
// upload clears undo history, as on a fresh attach.
func (b *Bridge) resync(c *nvim.Client) {
	lines := b.widgetLines()
	tick, err := c.RegisterBuffer(b.ctx, b.buf, lines)
	if err != nil {
		b.noteRPC(err)
		return
	}
	b.tracker.Reset()
	b.tracker.SetInitialTick(tick)
	b.tracker.SetLineCount(len(lines))
	attached, err := c.BufAttach(b.ctx, b.buf)
	if err != nil {
		b.noteRPC(err)
		return
	}
	b.tracker.SetAttached(attached)
}

// handleTextChanged pushes host-originated edits to the engine. Insert
// mode is excluded: the widget owns content until Escape uploads it,
// and engine-applied changes are excluded by the applying guard.
func (b *Bridge) handleTextChanged() {
	if b.tracker.ApplyingFromEngine() || b.exitingInsert {
		return
	}
	if b.insertLike() {
		return
	}
	b.syncWidgetToEngine()
}

// syncWidgetToEngine uploads the widget content with undo history
// preserved and arms the echo trap for the event it will generate.
func (b *Bridge) syncWidgetToEngine() {
	c := b.engine()
	if c == nil {
		return
	}
	lines := b.widgetLines()
	tick, err := c.UpdateBuffer(b.ctx, b.buf, lines)
	if err != nil {
		b.noteRPC(err)
		return
	}
	b.tracker.ExpectEcho(tick, bufsync.Change{First: 0, Last: -1, Lines: lines})
	b.tracker.SetLineCount(len(lines))
}
