package term

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// tabStop is the display width of one tab stop in the pane.
const tabStop = 4

// Widget is the in-memory text pane behind the terminal host. It
// carries the full capability surface the bridge binds to: lines and
// caret, selection, viewport, indent folds, and soft-wrap geometry.
//
// Columns are rune offsets. Display widths only matter at the wrap
// points and when mapping screen cells to positions; both go through
// the grapheme-aware walkers at the bottom of this file.
//
// The widget locks internally: the input pump mutates it for mouse
// handling while the frame loop reads and edits it.
type Widget struct {
	mu    sync.Mutex
	lines []string

	caretLine int
	caretCol  int

	sel      bool
	selFromL int
	selFromC int
	selToL   int
	selToC   int

	top  int
	rows int
	cols int

	// folds maps a fold head line to the last hidden line below it.
	folds map[int]int

	// revision counts text changes. The host compares it against the
	// value captured at load or save time to tell modified tabs.
	revision uint64
}

// NewWidget returns an empty one-line widget with a default viewport.
func NewWidget() *Widget {
	return &Widget{
		lines: []string{""},
		rows:  24,
		cols:  80,
		folds: make(map[int]int),
	}
}

func (w *Widget) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.lines, "\n")
}

func (w *Widget) SetText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = strings.Split(text, "\n")
	w.folds = make(map[int]int)
	w.revision++
	w.clampCaretLocked()
	w.clampTopLocked()
}

func (w *Widget) Line(idx int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lineLocked(idx)
}

func (w *Widget) SetLine(idx int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 || idx >= len(w.lines) {
		return
	}
	w.lines[idx] = text
	w.revision++
	w.clampCaretLocked()
}

func (w *Widget) InsertLine(idx int, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 {
		idx = 0
	}
	if idx > len(w.lines) {
		idx = len(w.lines)
	}
	w.lines = append(w.lines, "")
	copy(w.lines[idx+1:], w.lines[idx:])
	w.lines[idx] = text
	w.shiftFoldsInsertLocked(idx)
	w.revision++
}

func (w *Widget) RemoveLine(idx int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 || idx >= len(w.lines) {
		return
	}
	if len(w.lines) == 1 {
		w.lines[0] = ""
	} else {
		w.lines = append(w.lines[:idx], w.lines[idx+1:]...)
	}
	w.shiftFoldsRemoveLocked(idx)
	w.revision++
	w.clampCaretLocked()
	w.clampTopLocked()
}

func (w *Widget) LineCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lines)
}

func (w *Widget) Caret() (line, col int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.caretLine, w.caretCol
}

func (w *Widget) SetCaret(line, col int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setCaretLocked(line, col)
}

func (w *Widget) Select(fromLine, fromCol, toLine, toCol int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel = true
	w.selFromL, w.selFromC = w.clampPosLocked(fromLine, fromCol)
	w.selToL, w.selToC = w.clampPosLocked(toLine, toCol)
	w.setCaretLocked(w.selToL, w.selToC)
}

func (w *Widget) Deselect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel = false
}

func (w *Widget) HasSelection() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel
}

func (w *Widget) FirstVisibleLine() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.top
}

func (w *Widget) SetFirstVisibleLine(line int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if line < 0 {
		line = 0
	}
	if line > len(w.lines)-1 {
		line = len(w.lines) - 1
	}
	if head, hidden := w.hiddenByLocked(line); hidden {
		line = head
	}
	w.top = line
}

func (w *Widget) VisibleLineCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

func (w *Widget) CenterOnCaret() {
	w.mu.Lock()
	defer w.mu.Unlock()
	top := w.caretLine - w.rows/2
	if top < 0 {
		top = 0
	}
	if head, hidden := w.hiddenByLocked(top); hidden {
		top = head
	}
	w.top = top
}

// CanFold reports whether line opens an indent block: a non-blank
// line followed by at least one deeper-indented non-blank line.
func (w *Widget) CanFold(line int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canFoldLocked(line)
}

func (w *Widget) IsFolded(line int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.folds[line]
	return ok
}

func (w *Widget) Fold(line int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.foldLocked(line)
}

// Unfold expands the fold at line, or the fold hiding line when the
// line sits inside a collapsed region.
func (w *Widget) Unfold(line int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.folds[line]; ok {
		delete(w.folds, line)
		return
	}
	if head, hidden := w.hiddenByLocked(line); hidden {
		delete(w.folds, head)
	}
}

func (w *Widget) ToggleFold(line int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.folds[line]; ok {
		delete(w.folds, line)
		return
	}
	w.foldLocked(line)
}

func (w *Widget) FoldAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.lines {
		if w.canFoldLocked(i) {
			w.foldLocked(i)
		}
	}
}

func (w *Widget) UnfoldAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.folds = make(map[int]int)
}

func (w *Widget) WrapCount(line int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(splitWidth(w.lineLocked(line), w.cols))
}

func (w *Widget) CaretWrapIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	seg, _ := w.caretSegLocked()
	return seg
}

func (w *Widget) WrapSegments(line int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return splitWidth(w.lineLocked(line), w.cols)
}

// setViewport records the pane geometry in cells.
func (w *Widget) setViewport(cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	w.cols = cols
	w.rows = rows
	w.clampTopLocked()
}

func (w *Widget) textRevision() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revision
}

func (w *Widget) lineLocked(idx int) string {
	if idx < 0 || idx >= len(w.lines) {
		return ""
	}
	return w.lines[idx]
}

func (w *Widget) clampPosLocked(line, col int) (int, int) {
	if line < 0 {
		line = 0
	}
	if line > len(w.lines)-1 {
		line = len(w.lines) - 1
	}
	if col < 0 {
		col = 0
	}
	if n := runeLen(w.lines[line]); col > n {
		col = n
	}
	return line, col
}

func (w *Widget) clampCaretLocked() {
	w.caretLine, w.caretCol = w.clampPosLocked(w.caretLine, w.caretCol)
}

func (w *Widget) clampTopLocked() {
	if w.top > len(w.lines)-1 {
		w.top = len(w.lines) - 1
	}
	if w.top < 0 {
		w.top = 0
	}
	if head, hidden := w.hiddenByLocked(w.top); hidden {
		w.top = head
	}
}

func (w *Widget) setCaretLocked(line, col int) {
	w.caretLine, w.caretCol = w.clampPosLocked(line, col)
	// The engine can land the caret inside a collapsed region, a
	// search hit for example. The region opens so the caret stays on
	// screen.
	for {
		head, hidden := w.hiddenByLocked(w.caretLine)
		if !hidden {
			break
		}
		delete(w.folds, head)
	}
	w.scrollToCaretLocked()
}

// hiddenByLocked reports whether line is inside a collapsed region and
// returns the region's head line.
func (w *Widget) hiddenByLocked(line int) (int, bool) {
	for head, end := range w.folds {
		if line > head && line <= end {
			return head, true
		}
	}
	return 0, false
}

func (w *Widget) canFoldLocked(line int) bool {
	if line < 0 || line >= len(w.lines) {
		return false
	}
	base, blank := leadingIndent(w.lines[line])
	if blank {
		return false
	}
	for j := line + 1; j < len(w.lines); j++ {
		ind, bl := leadingIndent(w.lines[j])
		if bl {
			continue
		}
		return ind > base
	}
	return false
}

// foldSpanLocked returns the last line of the indent block opened at
// line. Trailing blank lines stay outside the fold.
func (w *Widget) foldSpanLocked(line int) int {
	base, _ := leadingIndent(w.lines[line])
	end := line
	for j := line + 1; j < len(w.lines); j++ {
		ind, blank := leadingIndent(w.lines[j])
		if blank {
			continue
		}
		if ind <= base {
			break
		}
		end = j
	}
	return end
}

func (w *Widget) foldLocked(line int) {
	if !w.canFoldLocked(line) {
		return
	}
	if _, ok := w.folds[line]; ok {
		return
	}
	end := w.foldSpanLocked(line)
	if end <= line {
		return
	}
	w.folds[line] = end
	if w.caretLine > line && w.caretLine <= end {
		w.caretLine = line
		if n := runeLen(w.lines[line]); w.caretCol > n {
			w.caretCol = n
		}
	}
}

func (w *Widget) shiftFoldsInsertLocked(idx int) {
	if len(w.folds) == 0 {
		return
	}
	next := make(map[int]int, len(w.folds))
	for head, end := range w.folds {
		if head >= idx {
			head++
		}
		if end >= idx {
			end++
		}
		if end > head {
			next[head] = end
		}
	}
	w.folds = next
}

func (w *Widget) shiftFoldsRemoveLocked(idx int) {
	if len(w.folds) == 0 {
		return
	}
	next := make(map[int]int, len(w.folds))
	for head, end := range w.folds {
		if head == idx {
			continue
		}
		if head > idx {
			head--
		}
		if end >= idx {
			end--
		}
		if end > head {
			next[head] = end
		}
	}
	w.folds = next
}

// lineAfterLocked returns the next visible line after line, stepping
// over a collapsed body.
func (w *Widget) lineAfterLocked(line int) int {
	if end, ok := w.folds[line]; ok && end > line {
		return end + 1
	}
	return line + 1
}

// caretSegLocked returns the wrap segment holding the caret and the
// caret's rune column within it. A caret exactly on a wrap boundary
// belongs to the following segment.
func (w *Widget) caretSegLocked() (int, int) {
	segs := splitWidth(w.lineLocked(w.caretLine), w.cols)
	col := w.caretCol
	seg := 0
	for seg < len(segs)-1 && col >= runeLen(segs[seg]) {
		col -= runeLen(segs[seg])
		seg++
	}
	return seg, col
}

// caretRowLocked returns the display row of the caret, or -1 when the
// caret is off screen.
func (w *Widget) caretRowLocked() int {
	caretSeg, _ := w.caretSegLocked()
	row := 0
	for line := w.top; line < len(w.lines) && row < w.rows; line = w.lineAfterLocked(line) {
		count := len(splitWidth(w.lines[line], w.cols))
		if line == w.caretLine {
			if row+caretSeg < w.rows {
				return row + caretSeg
			}
			return -1
		}
		row += count
	}
	return -1
}

func (w *Widget) scrollToCaretLocked() {
	if w.caretLine < w.top {
		w.top = w.caretLine
		w.clampTopLocked()
		return
	}
	for w.caretRowLocked() < 0 && w.top < w.caretLine {
		w.top = w.lineAfterLocked(w.top)
	}
}

// viewRow is one display row of the pane.
type viewRow struct {
	line   int
	seg    int
	text   string
	start  int
	folded bool
	hidden int
}

// view returns the visible rows plus the caret's row and cell column,
// caret coordinates -1 when it is off screen.
func (w *Widget) view() ([]viewRow, int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := make([]viewRow, 0, w.rows)
	caretRow, caretX := -1, -1
	caretSeg, caretSegCol := w.caretSegLocked()

	for line := w.top; line < len(w.lines) && len(rows) < w.rows; line = w.lineAfterLocked(line) {
		segs := splitWidth(w.lines[line], w.cols)
		end, folded := w.folds[line]
		start := 0
		for i, seg := range segs {
			if len(rows) == w.rows {
				break
			}
			r := viewRow{line: line, seg: i, text: seg, start: start}
			if folded && i == len(segs)-1 {
				r.folded = true
				r.hidden = end - line
			}
			if line == w.caretLine && i == caretSeg {
				caretRow = len(rows)
				caretX = displayWidth(string([]rune(seg)[:caretSegCol]))
			}
			rows = append(rows, r)
			start += runeLen(seg)
		}
	}
	return rows, caretRow, caretX
}

// selectionSpan returns the active selection ordered top to bottom.
func (w *Widget) selectionSpan() (fromL, fromC, toL, toC int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sel {
		return 0, 0, 0, 0, false
	}
	fromL, fromC, toL, toC = w.selFromL, w.selFromC, w.selToL, w.selToC
	if fromL > toL || (fromL == toL && fromC > toC) {
		fromL, fromC, toL, toC = toL, toC, fromL, fromC
	}
	return fromL, fromC, toL, toC, true
}

// locate maps a pane cell to a buffer position, clamping to the
// nearest character.
func (w *Widget) locate(x, y int) (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	row := 0
	last := w.top
	for line := w.top; line < len(w.lines); line = w.lineAfterLocked(line) {
		last = line
		segs := splitWidth(w.lines[line], w.cols)
		if y < row+len(segs) {
			seg := y - row
			if seg < 0 {
				seg = 0
			}
			start := 0
			for i := 0; i < seg; i++ {
				start += runeLen(segs[i])
			}
			return line, start + colAtWidth(segs[seg], x)
		}
		row += len(segs)
		if row > y {
			break
		}
	}
	return last, runeLen(w.lineLocked(last))
}

// scroll moves the viewport by delta visible lines without touching
// the caret.
func (w *Widget) scroll(delta int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if delta > 0 {
		for i := 0; i < delta; i++ {
			next := w.lineAfterLocked(w.top)
			if next > len(w.lines)-1 {
				break
			}
			w.top = next
		}
		return
	}
	for i := 0; i < -delta && w.top > 0; i++ {
		w.top--
		if head, hidden := w.hiddenByLocked(w.top); hidden {
			w.top = head
		}
	}
}

// Native editing, used by the host for keys the router leaves with the
// widget. Each helper clamps and keeps the caret visible.

func (w *Widget) insertRune(r rune) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel {
		w.deleteSelectionLocked()
	}
	rs := []rune(w.lines[w.caretLine])
	rs = append(rs[:w.caretCol], append([]rune{r}, rs[w.caretCol:]...)...)
	w.lines[w.caretLine] = string(rs)
	w.caretCol++
	w.revision++
	w.scrollToCaretLocked()
}

func (w *Widget) insertNewline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel {
		w.deleteSelectionLocked()
	}
	rs := []rune(w.lines[w.caretLine])
	head, tail := string(rs[:w.caretCol]), string(rs[w.caretCol:])
	w.lines[w.caretLine] = head
	idx := w.caretLine + 1
	w.lines = append(w.lines, "")
	copy(w.lines[idx+1:], w.lines[idx:])
	w.lines[idx] = tail
	w.shiftFoldsInsertLocked(idx)
	w.caretLine = idx
	w.caretCol = 0
	w.revision++
	w.scrollToCaretLocked()
}

func (w *Widget) backspace() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel {
		w.deleteSelectionLocked()
		w.scrollToCaretLocked()
		return
	}
	if w.caretCol > 0 {
		rs := []rune(w.lines[w.caretLine])
		w.lines[w.caretLine] = string(append(rs[:w.caretCol-1], rs[w.caretCol:]...))
		w.caretCol--
		w.revision++
		w.scrollToCaretLocked()
		return
	}
	if w.caretLine == 0 {
		return
	}
	prev := w.caretLine - 1
	joinCol := runeLen(w.lines[prev])
	w.lines[prev] += w.lines[w.caretLine]
	w.lines = append(w.lines[:w.caretLine], w.lines[w.caretLine+1:]...)
	w.shiftFoldsRemoveLocked(w.caretLine)
	w.caretLine = prev
	w.caretCol = joinCol
	w.revision++
	w.scrollToCaretLocked()
}

func (w *Widget) deleteForward() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel {
		w.deleteSelectionLocked()
		w.scrollToCaretLocked()
		return
	}
	rs := []rune(w.lines[w.caretLine])
	if w.caretCol < len(rs) {
		w.lines[w.caretLine] = string(append(rs[:w.caretCol], rs[w.caretCol+1:]...))
		w.revision++
		return
	}
	next := w.caretLine + 1
	if next >= len(w.lines) {
		return
	}
	w.lines[w.caretLine] += w.lines[next]
	w.lines = append(w.lines[:next], w.lines[next+1:]...)
	w.shiftFoldsRemoveLocked(next)
	w.revision++
}

func (w *Widget) deleteSelectionLocked() {
	fromL, fromC, toL, toC := w.selFromL, w.selFromC, w.selToL, w.selToC
	if fromL > toL || (fromL == toL && fromC > toC) {
		fromL, fromC, toL, toC = toL, toC, fromL, fromC
	}
	if last := len(w.lines) - 1; toL > last {
		toL, toC = last, runeLen(w.lines[last])
	}
	if fromL > toL {
		fromL = toL
	}
	w.sel = false
	if fromL == toL {
		rs := []rune(w.lines[fromL])
		if fromC > len(rs) {
			fromC = len(rs)
		}
		if toC > len(rs) {
			toC = len(rs)
		}
		w.lines[fromL] = string(append(rs[:fromC], rs[toC:]...))
	} else {
		head := []rune(w.lines[fromL])
		if fromC > len(head) {
			fromC = len(head)
		}
		tail := []rune(w.lines[toL])
		if toC > len(tail) {
			toC = len(tail)
		}
		w.lines[fromL] = string(head[:fromC]) + string(tail[toC:])
		w.lines = append(w.lines[:fromL+1], w.lines[toL+1:]...)
		for i := fromL + 1; i <= toL; i++ {
			w.shiftFoldsRemoveLocked(fromL + 1)
		}
	}
	w.caretLine = fromL
	w.caretCol = fromC
	w.revision++
	w.clampCaretLocked()
	w.clampTopLocked()
}

func runeLen(s string) int {
	return len([]rune(s))
}

// leadingIndent returns the display width of a line's leading
// whitespace. blank is true for empty and whitespace-only lines.
func leadingIndent(s string) (width int, blank bool) {
	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabStop - width%tabStop
		default:
			return width, false
		}
	}
	return width, true
}

// displayWidth measures s in cells from a fresh tab stop, grapheme by
// grapheme.
func displayWidth(s string) int {
	x := 0
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			width = tabStop - x%tabStop
		}
		x += width
	}
	return x
}

// colAtWidth returns the rune offset in s whose cell falls at display
// column x, clamped to the end of s.
func colAtWidth(s string, x int) int {
	col := 0
	pos := 0
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			width = tabStop - pos%tabStop
		}
		if pos+width > x {
			return col
		}
		pos += width
		col += runeLen(cluster)
	}
	return col
}

// splitWidth splits s into display rows of at most cols cells,
// breaking between grapheme clusters. The segments are substrings of
// s in order and concatenate back to it exactly; display-line motions
// depend on that.
func splitWidth(s string, cols int) []string {
	if cols <= 0 || s == "" {
		return []string{s}
	}
	var segs []string
	var seg strings.Builder
	x := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if cluster == "\t" {
			width = tabStop - x%tabStop
		}
		if x+width > cols && seg.Len() > 0 {
			segs = append(segs, seg.String())
			seg.Reset()
			x = 0
			if cluster == "\t" {
				width = tabStop
			}
		}
		seg.WriteString(cluster)
		x += width
	}
	segs = append(segs, seg.String())
	return segs
}
