package bridge

import "gdnvim/internal/bufsync"

// CompletionCanceler is implemented by widgets that can dismiss their
// completion popup. The Escape pipeline closes it before leaving
// insert so the popup does not swallow the mode change.
type CompletionCanceler interface {
	CancelCompletion()
}

// SendKeys queues keys in engine notation for FIFO delivery. Keys
// arriving mid-Escape-pipeline are buffered and flushed when the
// pipeline finishes; a busy handle buffers for the next frame. Reports
// false only when the engine is down.
func (b *Bridge) SendKeys(keys string) bool {
	if b.exitingInsert {
		b.queuedKeys = append(b.queuedKeys, keys)
		return true
	}
	switch b.tryPost(keys) {
	case postSent:
		return true
	case postBusy:
		b.queuedKeys = append(b.queuedKeys, keys)
		return true
	default:
		return false
	}
}

// LeaveInsert runs the return-to-normal pipeline after the host owned
// insert-mode typing. The Escape is queued first so the engine leaves
// insert before the content lands, the upload keeps undo history, and
// the caret saved before the push wins over anything the push moves.
// The push's line event comes back asynchronously and is absorbed as
// an expected echo on a later Poll, advancing the sync counter.
func (b *Bridge) LeaveInsert() {
	if b.exitingInsert {
		return
	}
	c := b.engine()
	if c == nil {
		return
	}
	b.exitingInsert = true
	defer b.finishInsertExit()

	if w, ok := b.widget.(CompletionCanceler); ok {
		w.CancelCompletion()
	}

	line, col := b.widget.Caret()

	b.post("<Esc>")
	b.flushKeys()

	lines := b.widgetLines()
	tick, err := c.UpdateBuffer(b.ctx, b.buf, lines)
	if err != nil {
		b.noteRPC(err)
	} else {
		b.tracker.ExpectEcho(tick, bufsync.Change{First: 0, Last: -1, Lines: lines})
		b.tracker.SetLineCount(len(lines))
	}

	if !b.tracker.Attached() {
		if attached, err := c.BufAttach(b.ctx, b.buf); err != nil {
			b.noteRPC(err)
		} else {
			b.tracker.SetAttached(attached)
		}
	}

	b.widget.SetCaret(line, col)
	pos := enginePos(line, col, b.widget.Line(line))
	if err := c.SetCursor(b.ctx, pos); err != nil {
		b.noteRPC(err)
	}
	b.noteSynced(line, col)
	b.router.SetEngineMode("n")
}

// finishInsertExit drops the pipeline latch and flushes every key that
// arrived while it was up.
func (b *Bridge) finishInsertExit() {
	b.exitingInsert = false
	b.drainQueuedKeys(-1)
}
