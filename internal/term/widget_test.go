package term

import (
	"strings"
	"testing"
)

func textWidget(text string) *Widget {
	w := NewWidget()
	w.SetText(text)
	return w
}

func TestSplitWidthSegmentsAreExactSubstrings(t *testing.T) {
	inputs := []string{
		"",
		"short",
		"hello world, this line wraps a few times over",
		"tabs\there\tand\tthere",
		"日本語のテキストも折り返す",
		"mixed 日本 and ascii كلمة text",
		"ééé combining marks",
	}
	for _, in := range inputs {
		for _, cols := range []int{1, 4, 10, 80} {
			segs := splitWidth(in, cols)
			if got := strings.Join(segs, ""); got != in {
				t.Errorf("splitWidth(%q, %d) segments join to %q, want original", in, cols, got)
			}
			for i, seg := range segs {
				if seg == "" && in != "" {
					t.Errorf("splitWidth(%q, %d) segment %d is empty", in, cols, i)
				}
			}
		}
	}
}

func TestSplitWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		cols int
		want []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "abc", 4, []string{"abc"}},
		{"exact", "abcd", 4, []string{"abcd"}},
		{"wraps", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"wide runes", "日本語", 4, []string{"日本", "語"}},
		{"oversized cluster alone", "日", 1, []string{"日"}},
		{"tab mid row", "ab\tcd", 4, []string{"ab\t", "cd"}},
		{"tab pushed to next row", "aaaa\tb", 4, []string{"aaaa", "\t", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitWidth(tt.in, tt.cols)
			if len(got) != len(tt.want) {
				t.Fatalf("splitWidth(%q, %d) = %q, want %q", tt.in, tt.cols, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"日本", 4},
		{"é", 1},
		{"\tX", 5},
		{"ab\tX", 5},
		{"a\t\tb", 9},
	}
	for _, tt := range tests {
		if got := displayWidth(tt.in); got != tt.want {
			t.Errorf("displayWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestColAtWidth(t *testing.T) {
	tests := []struct {
		in   string
		x    int
		want int
	}{
		{"hello", 0, 0},
		{"hello", 3, 3},
		{"hello", 99, 5},
		{"日本語", 0, 0},
		{"日本語", 1, 0},
		{"日本語", 2, 1},
		{"\tab", 2, 0},
		{"\tab", 4, 1},
		{"éx", 1, 2},
	}
	for _, tt := range tests {
		if got := colAtWidth(tt.in, tt.x); got != tt.want {
			t.Errorf("colAtWidth(%q, %d) = %d, want %d", tt.in, tt.x, got, tt.want)
		}
	}
}

func TestLeadingIndent(t *testing.T) {
	tests := []struct {
		in    string
		width int
		blank bool
	}{
		{"", 0, true},
		{"   ", 3, true},
		{"x", 0, false},
		{"    x", 4, false},
		{"\tx", 4, false},
		{"\t x", 5, false},
		{"  \tx", 4, false},
	}
	for _, tt := range tests {
		width, blank := leadingIndent(tt.in)
		if width != tt.width || blank != tt.blank {
			t.Errorf("leadingIndent(%q) = (%d, %v), want (%d, %v)",
				tt.in, width, blank, tt.width, tt.blank)
		}
	}
}

func TestWidgetLineAccess(t *testing.T) {
	w := textWidget("one\ntwo\nthree")
	if got := w.LineCount(); got != 3 {
		t.Fatalf("LineCount() = %d, want 3", got)
	}
	if got := w.Line(1); got != "two" {
		t.Errorf("Line(1) = %q, want %q", got, "two")
	}
	if got := w.Line(-1); got != "" {
		t.Errorf("Line(-1) = %q, want empty", got)
	}
	if got := w.Line(3); got != "" {
		t.Errorf("Line(3) = %q, want empty", got)
	}

	w.SetLine(1, "TWO")
	if got := w.Text(); got != "one\nTWO\nthree" {
		t.Errorf("Text() after SetLine = %q", got)
	}

	w.InsertLine(1, "mid")
	if got := w.Line(1); got != "mid" {
		t.Errorf("Line(1) after InsertLine = %q, want %q", got, "mid")
	}
	if got := w.LineCount(); got != 4 {
		t.Errorf("LineCount() after InsertLine = %d, want 4", got)
	}

	w.InsertLine(99, "tail")
	if got := w.Line(4); got != "tail" {
		t.Errorf("Line(4) after clamped InsertLine = %q, want %q", got, "tail")
	}

	w.RemoveLine(1)
	if got := w.Line(1); got != "TWO" {
		t.Errorf("Line(1) after RemoveLine = %q, want %q", got, "TWO")
	}
}

func TestWidgetRemoveLastLineLeavesEmptyBuffer(t *testing.T) {
	w := textWidget("only")
	w.RemoveLine(0)
	if got := w.LineCount(); got != 1 {
		t.Fatalf("LineCount() = %d, want 1", got)
	}
	if got := w.Line(0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}
}

func TestWidgetRevisionTracksTextOnly(t *testing.T) {
	w := textWidget("hello")
	base := w.textRevision()

	w.SetCaret(0, 3)
	w.Select(0, 0, 0, 2)
	w.Deselect()
	w.SetFirstVisibleLine(0)
	if got := w.textRevision(); got != base {
		t.Errorf("revision = %d after caret/selection moves, want %d", got, base)
	}

	w.SetLine(0, "world")
	if got := w.textRevision(); got == base {
		t.Error("revision unchanged after SetLine")
	}
}

func TestWidgetCaretClamping(t *testing.T) {
	w := textWidget("ab\ncdef")
	w.SetCaret(5, 99)
	if line, col := w.Caret(); line != 1 || col != 4 {
		t.Errorf("Caret() = (%d, %d), want (1, 4)", line, col)
	}
	w.SetCaret(-3, -3)
	if line, col := w.Caret(); line != 0 || col != 0 {
		t.Errorf("Caret() = (%d, %d), want (0, 0)", line, col)
	}
}

func TestWidgetSelectionSpanOrdered(t *testing.T) {
	w := textWidget("one\ntwo\nthree")

	if _, _, _, _, ok := w.selectionSpan(); ok {
		t.Fatal("selectionSpan() ok with no selection")
	}

	// Backwards drag: span still comes out top to bottom.
	w.Select(2, 3, 0, 1)
	fromL, fromC, toL, toC, ok := w.selectionSpan()
	if !ok {
		t.Fatal("selectionSpan() not ok after Select")
	}
	if fromL != 0 || fromC != 1 || toL != 2 || toC != 3 {
		t.Errorf("selectionSpan() = (%d,%d)-(%d,%d), want (0,1)-(2,3)", fromL, fromC, toL, toC)
	}
	if line, col := w.Caret(); line != 0 || col != 1 {
		t.Errorf("Caret() = (%d, %d) after Select, want selection end (0, 1)", line, col)
	}

	w.Deselect()
	if w.HasSelection() {
		t.Error("HasSelection() true after Deselect")
	}
}

const foldSample = "func main() {\n    a()\n    b()\n\n}"

func TestWidgetFoldSpan(t *testing.T) {
	w := textWidget(foldSample)

	if !w.CanFold(0) {
		t.Fatal("CanFold(0) = false, want true")
	}
	if w.CanFold(1) {
		t.Error("CanFold(1) = true for a leaf line")
	}
	if w.CanFold(3) {
		t.Error("CanFold(3) = true for a blank line")
	}

	w.Fold(0)
	if !w.IsFolded(0) {
		t.Fatal("IsFolded(0) = false after Fold")
	}

	// The trailing blank line stays outside the fold.
	rows, _, _ := w.view()
	var visible []int
	for _, r := range rows {
		visible = append(visible, r.line)
	}
	want := []int{0, 3, 4}
	if len(visible) != len(want) {
		t.Fatalf("visible lines = %v, want %v", visible, want)
	}
	for i := range want {
		if visible[i] != want[i] {
			t.Fatalf("visible lines = %v, want %v", visible, want)
		}
	}
	if !rows[0].folded || rows[0].hidden != 2 {
		t.Errorf("row 0 folded=%v hidden=%d, want true/2", rows[0].folded, rows[0].hidden)
	}
}

func TestWidgetFoldCapturesCaret(t *testing.T) {
	w := textWidget(foldSample)
	w.SetCaret(2, 1)
	w.Fold(0)
	if line, col := w.Caret(); line != 0 || col != 1 {
		t.Errorf("Caret() = (%d, %d) after folding over it, want (0, 1)", line, col)
	}
}

func TestWidgetSetCaretOpensFold(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)
	w.SetCaret(2, 0)
	if w.IsFolded(0) {
		t.Error("IsFolded(0) = true after moving caret inside")
	}
	if line, _ := w.Caret(); line != 2 {
		t.Errorf("Caret() line = %d, want 2", line)
	}
}

func TestWidgetUnfoldFromInside(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)
	w.Unfold(2)
	if w.IsFolded(0) {
		t.Error("IsFolded(0) = true after Unfold from inside the region")
	}
}

func TestWidgetToggleFold(t *testing.T) {
	w := textWidget(foldSample)
	w.ToggleFold(0)
	if !w.IsFolded(0) {
		t.Fatal("IsFolded(0) = false after first toggle")
	}
	w.ToggleFold(0)
	if w.IsFolded(0) {
		t.Error("IsFolded(0) = true after second toggle")
	}
}

func TestWidgetFoldAllUnfoldAll(t *testing.T) {
	w := textWidget("a() {\n    x\nb() {\n    y\n}")
	w.FoldAll()
	if !w.IsFolded(0) || !w.IsFolded(2) {
		t.Fatalf("FoldAll left heads open: 0=%v 2=%v", w.IsFolded(0), w.IsFolded(2))
	}
	w.UnfoldAll()
	if w.IsFolded(0) || w.IsFolded(2) {
		t.Error("UnfoldAll left folds")
	}
}

func TestWidgetFoldsShiftOnLineEdits(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)

	w.InsertLine(0, "// lead")
	if w.IsFolded(0) {
		t.Error("IsFolded(0) = true after inserting above the fold")
	}
	if !w.IsFolded(1) {
		t.Fatal("IsFolded(1) = false, fold head did not shift down")
	}

	w.RemoveLine(0)
	if !w.IsFolded(0) {
		t.Fatal("IsFolded(0) = false, fold head did not shift back up")
	}

	// Removing a body line shrinks the region.
	w.RemoveLine(1)
	if !w.IsFolded(0) {
		t.Fatal("IsFolded(0) = false after removing one body line")
	}
	rows, _, _ := w.view()
	if rows[0].hidden != 1 {
		t.Errorf("hidden = %d after body shrink, want 1", rows[0].hidden)
	}

	// Removing the head line drops the fold entirely.
	w.RemoveLine(0)
	if w.IsFolded(0) || w.IsFolded(1) {
		t.Error("fold survived removal of its head line")
	}
}

func TestWidgetSetTextClearsFolds(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)
	w.SetText("fresh")
	if w.IsFolded(0) {
		t.Error("IsFolded(0) = true after SetText")
	}
}

func TestWidgetFirstVisibleLineSnapsToFoldHead(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)
	w.SetFirstVisibleLine(2)
	if got := w.FirstVisibleLine(); got != 0 {
		t.Errorf("FirstVisibleLine() = %d, want fold head 0", got)
	}
}

func TestWidgetScrollSkipsFoldedBody(t *testing.T) {
	w := textWidget(foldSample)
	w.setViewport(80, 2)
	w.Fold(0)

	w.scroll(1)
	if got := w.FirstVisibleLine(); got != 3 {
		t.Fatalf("FirstVisibleLine() = %d after scroll down, want 3", got)
	}
	w.scroll(-1)
	if got := w.FirstVisibleLine(); got != 0 {
		t.Errorf("FirstVisibleLine() = %d after scroll up, want fold head 0", got)
	}
}

func TestWidgetCenterOnCaret(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "x"
	}
	w := textWidget(strings.Join(lines, "\n"))
	w.setViewport(80, 10)
	w.SetCaret(20, 0)
	w.CenterOnCaret()
	if got := w.FirstVisibleLine(); got != 15 {
		t.Errorf("FirstVisibleLine() = %d, want 15", got)
	}
}

func TestWidgetWrapGeometry(t *testing.T) {
	w := textWidget("abcdefghij")
	w.setViewport(4, 10)

	if got := w.WrapCount(0); got != 3 {
		t.Fatalf("WrapCount(0) = %d, want 3", got)
	}
	segs := w.WrapSegments(0)
	if len(segs) != 3 || segs[0] != "abcd" || segs[2] != "ij" {
		t.Fatalf("WrapSegments(0) = %q", segs)
	}

	// A caret sitting exactly on a wrap boundary belongs to the next
	// display row.
	w.SetCaret(0, 3)
	if got := w.CaretWrapIndex(); got != 0 {
		t.Errorf("CaretWrapIndex() at col 3 = %d, want 0", got)
	}
	w.SetCaret(0, 4)
	if got := w.CaretWrapIndex(); got != 1 {
		t.Errorf("CaretWrapIndex() at col 4 = %d, want 1", got)
	}
	w.SetCaret(0, 10)
	if got := w.CaretWrapIndex(); got != 2 {
		t.Errorf("CaretWrapIndex() at line end = %d, want 2", got)
	}
}

func TestWidgetViewCaretPosition(t *testing.T) {
	w := textWidget("abcdefghij\nsecond")
	w.setViewport(4, 10)
	w.SetCaret(0, 5)

	rows, caretRow, caretX := w.view()
	if len(rows) != 5 {
		t.Fatalf("view rows = %d, want 5", len(rows))
	}
	if caretRow != 1 || caretX != 1 {
		t.Errorf("caret at (row %d, x %d), want (1, 1)", caretRow, caretX)
	}
	if rows[3].line != 1 || rows[3].seg != 0 || rows[3].text != "seco" {
		t.Errorf("row 3 = %+v, want start of line 1", rows[3])
	}
	if rows[1].start != 4 {
		t.Errorf("row 1 start = %d, want 4", rows[1].start)
	}
}

func TestWidgetScrollToCaretBelowViewport(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "x"
	}
	w := textWidget(strings.Join(lines, "\n"))
	w.setViewport(80, 5)

	w.SetCaret(10, 0)
	_, caretRow, _ := w.view()
	if caretRow < 0 {
		t.Fatalf("caret off screen after SetCaret, top = %d", w.FirstVisibleLine())
	}
	if got := w.FirstVisibleLine(); got != 6 {
		t.Errorf("FirstVisibleLine() = %d, want 6", got)
	}

	w.SetCaret(2, 0)
	if got := w.FirstVisibleLine(); got != 2 {
		t.Errorf("FirstVisibleLine() = %d after scrolling up, want 2", got)
	}
}

func TestWidgetLocate(t *testing.T) {
	w := textWidget("abcdefghij\nsecond")
	w.setViewport(4, 10)

	tests := []struct {
		x, y      int
		line, col int
	}{
		{0, 0, 0, 0},
		{2, 0, 0, 2},
		{1, 1, 0, 5},
		{3, 2, 0, 10},
		{99, 2, 0, 10},
		{0, 3, 1, 0},
		{99, 99, 1, 6},
	}
	for _, tt := range tests {
		line, col := w.locate(tt.x, tt.y)
		if line != tt.line || col != tt.col {
			t.Errorf("locate(%d, %d) = (%d, %d), want (%d, %d)",
				tt.x, tt.y, line, col, tt.line, tt.col)
		}
	}
}

func TestWidgetLocateSkipsFoldedBody(t *testing.T) {
	w := textWidget(foldSample)
	w.Fold(0)
	if line, _ := w.locate(0, 1); line != 3 {
		t.Errorf("locate row 1 = line %d with fold collapsed, want 3", line)
	}
}

func TestWidgetInsertRune(t *testing.T) {
	w := textWidget("ab")
	w.SetCaret(0, 1)
	w.insertRune('X')
	if got := w.Text(); got != "aXb" {
		t.Errorf("Text() = %q, want %q", got, "aXb")
	}
	if line, col := w.Caret(); line != 0 || col != 2 {
		t.Errorf("Caret() = (%d, %d), want (0, 2)", line, col)
	}
}

func TestWidgetInsertNewline(t *testing.T) {
	w := textWidget("hello")
	w.SetCaret(0, 2)
	w.insertNewline()
	if got := w.Text(); got != "he\nllo" {
		t.Errorf("Text() = %q, want %q", got, "he\nllo")
	}
	if line, col := w.Caret(); line != 1 || col != 0 {
		t.Errorf("Caret() = (%d, %d), want (1, 0)", line, col)
	}
}

func TestWidgetBackspace(t *testing.T) {
	w := textWidget("ab\ncd")
	w.SetCaret(1, 1)
	w.backspace()
	if got := w.Text(); got != "ab\nd" {
		t.Fatalf("Text() = %q, want %q", got, "ab\nd")
	}

	// At column zero the line joins the one above.
	w.SetCaret(1, 0)
	w.backspace()
	if got := w.Text(); got != "abd" {
		t.Errorf("Text() = %q, want %q", got, "abd")
	}
	if line, col := w.Caret(); line != 0 || col != 2 {
		t.Errorf("Caret() = (%d, %d) after join, want (0, 2)", line, col)
	}

	// Start of buffer is a no-op.
	w.SetCaret(0, 0)
	w.backspace()
	if got := w.Text(); got != "abd" {
		t.Errorf("Text() = %q after no-op backspace, want %q", got, "abd")
	}
}

func TestWidgetDeleteForward(t *testing.T) {
	w := textWidget("ab\ncd")
	w.SetCaret(0, 0)
	w.deleteForward()
	if got := w.Text(); got != "b\ncd" {
		t.Fatalf("Text() = %q, want %q", got, "b\ncd")
	}

	// At end of line the next line joins up.
	w.SetCaret(0, 1)
	w.deleteForward()
	if got := w.Text(); got != "bcd" {
		t.Errorf("Text() = %q, want %q", got, "bcd")
	}

	// End of buffer is a no-op.
	w.SetCaret(0, 3)
	w.deleteForward()
	if got := w.Text(); got != "bcd" {
		t.Errorf("Text() = %q after no-op delete, want %q", got, "bcd")
	}
}

func TestWidgetSelectionReplacedByTyping(t *testing.T) {
	w := textWidget("hello world")
	w.Select(0, 0, 0, 5)
	w.insertRune('H')
	if got := w.Text(); got != "H world" {
		t.Errorf("Text() = %q, want %q", got, "H world")
	}
	if w.HasSelection() {
		t.Error("HasSelection() = true after typing over it")
	}
	if line, col := w.Caret(); line != 0 || col != 1 {
		t.Errorf("Caret() = (%d, %d), want (0, 1)", line, col)
	}
}

func TestWidgetMultiLineSelectionDelete(t *testing.T) {
	w := textWidget("one\ntwo\nthree")
	w.Select(2, 3, 0, 1)
	w.backspace()
	if got := w.Text(); got != "oee" {
		t.Errorf("Text() = %q, want %q", got, "oee")
	}
	if line, col := w.Caret(); line != 0 || col != 1 {
		t.Errorf("Caret() = (%d, %d), want (0, 1)", line, col)
	}
	if got := w.LineCount(); got != 1 {
		t.Errorf("LineCount() = %d, want 1", got)
	}
}

func TestWidgetStaleSelectionClamped(t *testing.T) {
	w := textWidget("one\ntwo\nthree")
	w.Select(0, 1, 2, 3)
	// The buffer shrinks underneath the selection before the delete
	// runs, the way an engine-driven resync can reshape it.
	w.SetText("ab")
	w.deleteForward()
	if got := w.Text(); got != "a" {
		t.Errorf("Text() = %q after clamped selection delete, want %q", got, "a")
	}
}
