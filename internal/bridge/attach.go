package bridge

import (
	"strings"

	"gdnvim/internal/bufsync"
	"gdnvim/internal/nvim"
	"gdnvim/internal/nvim/runtime"
)

// normalizeLines turns widget text into the line array the engine
// expects: one trailing newline trimmed, carriage returns stripped, an
// empty buffer becoming one empty line.
func normalizeLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if strings.ContainsRune(ln, '\r') {
			lines[i] = strings.ReplaceAll(ln, "\r", "")
		}
	}
	return lines
}

func (b *Bridge) widgetLines() []string {
	return normalizeLines(b.widget.Text())
}

// bindScratch registers the widget's current content against the
// engine's startup buffer so modal editing works before any script is
// focused.
func (b *Bridge) bindScratch() error {
	c := b.engine()
	if c == nil {
		return ErrNotConnected
	}
	buf, err := c.CurrentBuf(b.ctx)
	if err != nil {
		b.noteRPC(err)
		return err
	}
	lines := b.widgetLines()
	tick, err := c.RegisterBuffer(b.ctx, buf, lines)
	if err != nil {
		b.noteRPC(err)
		return err
	}
	attached, err := c.BufAttach(b.ctx, buf)
	if err != nil {
		b.noteRPC(err)
		return err
	}

	b.buf = buf
	b.path = ""
	b.tracker.Reset()
	b.tracker.SetInitialTick(tick)
	b.tracker.SetLineCount(len(lines))
	b.tracker.SetAttached(attached)
	b.PushCursor()
	return nil
}

// SwitchBuffer binds the widget to the engine buffer backing path,
// uploading the widget's content as the authoritative text. The host
// calls this whenever the focused script changes.
func (b *Bridge) SwitchBuffer(path string) error {
	c := b.engine()
	if c == nil {
		return ErrNotConnected
	}
	b.switchSeq++
	seq := b.switchSeq

	lines := b.widgetLines()
	res, err := c.SwitchToBuffer(b.ctx, path, lines)
	if err != nil {
		b.noteRPC(err)
		return err
	}
	if seq != b.switchSeq {
		// A newer switch superseded this one while a dialog pumped
		// frames; its result is stale.
		return nil
	}

	b.buf = res.Buf
	b.path = path
	b.tracker.Reset()
	b.tracker.SetInitialTick(res.Tick)
	b.tracker.SetLineCount(len(lines))
	b.tracker.SetAttached(res.Attached)
	if !res.Attached {
		b.log.Warn("engine declined attach for %q", path)
	}

	if res.IsNew {
		// First visit: the widget caret is the one source of truth.
		b.PushCursor()
	} else {
		b.applyEngineCursor(res.Cursor)
	}

	b.resizeGrid(c)
	if ft := runtime.FiletypeFor(path); ft != "" {
		if err := c.Command(b.ctx, "silent! setlocal filetype="+ft); err != nil {
			b.noteRPC(err)
		}
	}
	b.applyPendingJump(path)
	return nil
}

// applyPendingJump finishes a cross-file definition jump once its file
// is bound. Any other switch drops the pending target.
func (b *Bridge) applyPendingJump(path string) {
	j := b.pendingJump
	b.pendingJump = nil
	if j == nil || j.path != path {
		return
	}
	b.widget.SetCaret(j.line, j.col)
	b.PushCursor()
}

// CloseCurrent runs the close handshake for the bound buffer: the
// engine learns the final cursor, then the buffer is wiped so a later
// reopen starts clean.
func (b *Bridge) CloseCurrent() error {
	if b.buf == 0 {
		return nil
	}
	c := b.engine()
	if c == nil {
		return ErrNotConnected
	}
	line, col := b.widget.Caret()
	pos := nvim.Position{
		Row: int64(line + 1),
		Col: int64(charToByte(b.widget.Line(line), col)),
	}
	if err := c.SetCursor(b.ctx, pos); err != nil {
		b.noteRPC(err)
	}
	err := c.WipeoutBuffer(b.ctx, b.buf)
	if err != nil {
		b.noteRPC(err)
	}
	b.buf = 0
	b.path = ""
	b.tracker.SetAttached(false)
	return err
}

// ReloadCurrent re-reads the bound file from disk on the engine side
// and mirrors the result into the widget, dropping local changes.
func (b *Bridge) ReloadCurrent() error {
	c := b.engine()
	if c == nil {
		return ErrNotConnected
	}
	res, err := c.ReloadBuffer(b.ctx)
	if err != nil {
		b.noteRPC(err)
		return err
	}

	b.tracker.Reset()
	b.tracker.SetInitialTick(res.Tick)
	b.tracker.SetLineCount(len(res.Lines))
	b.tracker.SetAttached(res.Attached)
	b.applyChange(bufsync.Change{First: 0, Last: -1, Lines: res.Lines})
	b.applyEngineCursor(res.Cursor)
	return nil
}

// rebind restores the buffer binding after an engine restart.
func (b *Bridge) rebind() error {
	if b.path == "" {
		return b.bindScratch()
	}
	return b.SwitchBuffer(b.path)
}
