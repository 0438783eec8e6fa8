package term

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"gdnvim/internal/input/key"
)

// Modal prompts run on the frame thread: the caller blocks in a read
// loop while the input pump diverts key events into a sink channel
// installed for the prompt's lifetime. Everything else, engine
// polling included, waits until the user answers. That matches the
// embedding editor, where a dialog blocks its scripting thread.

// AskRestart shows the engine-failure prompt and reports whether the
// user chose a restart.
func (t *Host) AskRestart(reason string) bool {
	return t.confirm(fmt.Sprintf("Engine exited: %s. Restart?", reason))
}

// AskReload asks whether to drop local edits in favor of an external
// change to path.
func (t *Host) AskReload(path string) bool {
	return t.confirm(fmt.Sprintf("%s changed on disk. Reload and lose local changes?", filepath.Base(path)))
}

// confirm paints msg over the status row and waits for y or n. Enter
// accepts, Escape declines.
func (t *Host) confirm(msg string) bool {
	sink := t.openSink()
	defer t.closeSink()

	t.drawInputRow(msg+" [y/n]", -1)
	for {
		select {
		case ev := <-sink:
			switch {
			case ev.IsRune() && (ev.Rune == 'y' || ev.Rune == 'Y'):
				return true
			case ev.IsEnter():
				return true
			case ev.IsRune() && (ev.Rune == 'n' || ev.Rune == 'N'):
				return false
			case ev.IsEscape():
				return false
			}
		case <-t.quit:
			return false
		}
	}
}

// readLine collects a line of input on the status row. onChange runs
// before each repaint with the text typed so far; ok is false when
// the prompt was cancelled.
func (t *Host) readLine(label string, onChange func(string)) (string, bool) {
	sink := t.openSink()
	defer t.closeSink()

	var buf []rune
	redraw := func() {
		if onChange != nil {
			onChange(string(buf))
		}
		text := label + string(buf)
		t.drawInputRow(text, displayWidth(text))
	}
	redraw()

	for {
		select {
		case ev := <-sink:
			switch {
			case ev.IsEscape():
				return "", false
			case ev.IsEnter():
				return string(buf), true
			case ev.IsBackspace():
				if len(buf) > 0 {
					buf = buf[:len(buf)-1]
				}
				redraw()
			case ev.IsChar() && !ev.IsModified():
				buf = append(buf, ev.Rune)
				redraw()
			}
		case <-t.quit:
			return "", false
		}
	}
}

// drawInputRow paints the bottom row for a modal prompt and shows the
// text cursor at cursorX when it is not negative.
func (t *Host) drawInputRow(text string, cursorX int) {
	width, height := t.screen.Size()
	row := height - 1
	st := tcell.StyleDefault.Reverse(true)
	x := drawText(t.screen, 0, row, width, text, st)
	for ; x < width; x++ {
		t.screen.SetContent(x, row, ' ', nil, st)
	}
	if cursorX >= 0 && cursorX < width {
		t.screen.ShowCursor(cursorX, row)
	} else {
		t.screen.HideCursor()
	}
	t.screen.Show()
}

func (t *Host) openSink() chan key.Event {
	ch := make(chan key.Event, 8)
	t.mu.Lock()
	t.dialog = ch
	t.mu.Unlock()
	return ch
}

func (t *Host) closeSink() {
	t.mu.Lock()
	t.dialog = nil
	t.mu.Unlock()
}

func (t *Host) sink() chan key.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dialog
}
