package term

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"gdnvim/internal/app"
)

// modeStyles follows the usual modal palette: blue normal, green
// insert, magenta visual, yellow command, red replace.
var modeStyles = map[string]tcell.Style{
	"NORMAL":  tcell.StyleDefault.Bold(true).Background(tcell.ColorBlue).Foreground(tcell.ColorWhite),
	"INSERT":  tcell.StyleDefault.Bold(true).Background(tcell.ColorGreen).Foreground(tcell.ColorBlack),
	"VISUAL":  tcell.StyleDefault.Bold(true).Background(tcell.ColorDarkMagenta).Foreground(tcell.ColorWhite),
	"V-LINE":  tcell.StyleDefault.Bold(true).Background(tcell.ColorDarkMagenta).Foreground(tcell.ColorWhite),
	"V-BLOCK": tcell.StyleDefault.Bold(true).Background(tcell.ColorDarkMagenta).Foreground(tcell.ColorWhite),
	"COMMAND": tcell.StyleDefault.Bold(true).Background(tcell.ColorYellow).Foreground(tcell.ColorBlack),
	"REPLACE": tcell.StyleDefault.Bold(true).Background(tcell.ColorRed).Foreground(tcell.ColorWhite),
	"OFFLINE": tcell.StyleDefault.Bold(true).Background(tcell.ColorGray).Foreground(tcell.ColorBlack),
}

// Render draws one frame: pane, status row, key overlay. It runs on
// the frame thread and reads the application status directly.
func (t *Host) Render() {
	if t.screen == nil {
		return
	}
	t.checkDisk()

	var st app.Status
	if t.src != nil {
		st = t.src.Status()
	}

	width, height := t.screen.Size()
	if width < 1 || height < 1 {
		return
	}
	base := t.hl.Base()
	rows, caretRow, caretX := t.widget.view()
	fl, fc, tl, tc, selOK := t.widget.selectionSpan()

	paneRows := height - 1
	for y := 0; y < paneRows; y++ {
		if y >= len(rows) {
			for x := 0; x < width; x++ {
				t.screen.SetContent(x, y, ' ', nil, base)
			}
			continue
		}
		row := rows[y]
		selFrom, selTo := -1, -1
		if selOK && row.line >= fl && row.line <= tl {
			selFrom, selTo = 0, 1<<30
			if row.line == fl {
				selFrom = fc
			}
			if row.line == tl {
				selTo = tc
			}
		}
		t.drawRow(y, width, row, base, t.hl.Line(t.widget.Line(row.line)), selFrom, selTo)
	}

	tookCursor := t.drawStatus(st, width, height-1)
	t.drawOverlay(width)

	switch {
	case tookCursor:
	case caretRow >= 0 && caretRow < paneRows:
		t.screen.SetCursorStyle(cursorShape(st.Mode))
		t.screen.ShowCursor(caretX, caretRow)
	default:
		t.screen.HideCursor()
	}
	t.screen.Show()
}

// checkDisk applies a debounced external change to the current file:
// a silent reload when the widget is clean, a prompt first when it
// holds local edits.
func (t *Host) checkDisk() {
	t.mu.Lock()
	path := t.diskPath
	t.diskPath = ""
	var current string
	if len(t.tabs) > 0 {
		current = t.tabs[t.cur].path
	}
	dirty := t.dirtyLocked()
	t.mu.Unlock()

	if path == "" || path != current {
		return
	}
	if dirty && !t.AskReload(path) {
		return
	}
	t.ReloadFromDisk()
	if t.onReload != nil {
		t.onReload()
	}
}

func (t *Host) drawRow(y, width int, row viewRow, base tcell.Style, spans []span, selFrom, selTo int) {
	x := 0
	runeIdx := row.start
	rest := row.text
	state := -1
	for rest != "" && x < width {
		var cluster string
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		st := styleAt(spans, runeIdx, base)
		if runeIdx >= selFrom && runeIdx < selTo {
			st = st.Reverse(true)
		}
		if cluster == "\t" {
			cw = tabStop - x%tabStop
			for i := 0; i < cw && x < width; i++ {
				t.screen.SetContent(x, y, ' ', nil, st)
				x++
			}
		} else {
			rs := []rune(cluster)
			t.screen.SetContent(x, y, rs[0], rs[1:], st)
			x += cw
		}
		runeIdx += len([]rune(cluster))
	}
	if row.folded {
		x = drawText(t.screen, x, y, width, fmt.Sprintf(" +%d lines", row.hidden), base.Dim(true))
	}
	for ; x < width; x++ {
		t.screen.SetContent(x, y, ' ', nil, base)
	}
}

// drawStatus paints the bottom row: an active command-line prompt
// verbatim, otherwise the mode segment, file name, pending keys, and
// position info. Returns true when the prompt took the text cursor.
func (t *Host) drawStatus(st app.Status, width, row int) bool {
	if st.Prompt != "" {
		promptStyle := tcell.StyleDefault
		x := drawText(t.screen, 0, row, width, st.Prompt, promptStyle)
		for ; x < width; x++ {
			t.screen.SetContent(x, row, ' ', nil, promptStyle)
		}
		cx := displayWidth(st.Prompt)
		if cx >= width {
			cx = width - 1
		}
		t.screen.ShowCursor(cx, row)
		return true
	}

	label := st.ModeLabel
	if !st.Connected {
		label = "OFFLINE"
	} else if label == "" {
		label = "NORMAL"
	}
	modeStyle, ok := modeStyles[label]
	if !ok {
		modeStyle = tcell.StyleDefault.Bold(true).Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
	}
	barStyle := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)

	t.mu.Lock()
	message := t.message
	name := "[No Name]"
	var cur, count int
	if len(t.tabs) > 0 {
		name = displayName(t.tabs[t.cur].path)
		cur, count = t.cur+1, len(t.tabs)
	}
	if t.dirtyLocked() {
		name += " [+]"
	}
	t.mu.Unlock()

	x := drawText(t.screen, 0, row, width, " "+label+" ", modeStyle)
	x = drawText(t.screen, x, row, width, " "+name, barStyle)
	if count > 1 {
		x = drawText(t.screen, x, row, width, fmt.Sprintf(" [%d/%d]", cur, count), barStyle)
	}
	if st.Recording != 0 {
		x = drawText(t.screen, x, row, width, fmt.Sprintf(" recording @%c", st.Recording), barStyle)
	}
	if st.Count != "" || st.Chord != "" {
		x = drawText(t.screen, x, row, width, " "+st.Count+st.Chord, barStyle)
	}
	if message != "" {
		x = drawText(t.screen, x, row, width, "  "+message, barStyle)
	}

	right := t.positionInfo(st)
	if start := width - len(right) - 1; start > x {
		for ; x < start; x++ {
			t.screen.SetContent(x, row, ' ', nil, barStyle)
		}
		x = drawText(t.screen, start, row, width, right, barStyle)
	}
	for ; x < width; x++ {
		t.screen.SetContent(x, row, ' ', nil, barStyle)
	}
	return false
}

// positionInfo formats the right-hand status segment.
func (t *Host) positionInfo(st app.Status) string {
	line, col := t.widget.Caret()
	total := t.widget.LineCount()
	pos := fmt.Sprintf("Ln %d, Col %d", line+1, col+1)
	switch {
	case line == 0:
		pos += " | Top"
	case line >= total-1:
		pos += " | Bot"
	default:
		pos += fmt.Sprintf(" | %d%%", (line+1)*100/total)
	}
	if st.Connected {
		pos += " | nvim " + st.EngineVersion.String()
	} else {
		pos += " | engine down"
	}
	return pos
}

// drawOverlay echoes recently typed keys in the top-right corner when
// the keyOverlay setting is on.
func (t *Host) drawOverlay(width int) {
	if t.src == nil || !t.src.Settings().UI.KeyOverlay {
		return
	}
	t.mu.Lock()
	keys := strings.Join(t.overlay, " ")
	t.mu.Unlock()
	if keys == "" {
		return
	}
	start := width - displayWidth(keys) - 1
	if start < 0 {
		start = 0
	}
	drawText(t.screen, start, 0, width, keys, t.hl.Base().Dim(true))
}

// cursorShape picks the terminal cursor for the engine mode: a bar in
// insert, an underline in replace, a block otherwise.
func cursorShape(mode string) tcell.CursorStyle {
	switch {
	case strings.HasPrefix(mode, "i"):
		return tcell.CursorStyleSteadyBar
	case strings.HasPrefix(mode, "R"):
		return tcell.CursorStyleSteadyUnderline
	default:
		return tcell.CursorStyleSteadyBlock
	}
}

func styleAt(spans []span, idx int, base tcell.Style) tcell.Style {
	for _, sp := range spans {
		if idx < sp.start {
			break
		}
		if idx < sp.end {
			return sp.style
		}
	}
	return base
}

// drawText paints text from x, clipped to maxX, and returns the next
// column.
func drawText(s tcell.Screen, x, y, maxX int, text string, st tcell.Style) int {
	for _, r := range text {
		if x >= maxX {
			break
		}
		s.SetContent(x, y, r, nil, st)
		x++
	}
	return x
}
