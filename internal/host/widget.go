package host

// Widget is the capability set the bridge needs from the host's text
// widget. Lines and columns are 0-indexed; columns count characters,
// not bytes. Implementations are not required to be safe for
// concurrent use; the bridge serializes access on its poll loop.
type Widget interface {
	// Text returns the full buffer content with "\n" separators.
	Text() string

	// SetText replaces the full buffer content.
	SetText(text string)

	// Line returns the text of one line, without a trailing newline.
	// Out-of-range indices return "".
	Line(idx int) string

	// SetLine replaces the text of one line.
	SetLine(idx int, text string)

	// InsertLine inserts a new line before idx. idx == LineCount()
	// appends.
	InsertLine(idx int, text string)

	// RemoveLine deletes one line.
	RemoveLine(idx int)

	// LineCount returns the number of lines. An empty buffer has one
	// empty line.
	LineCount() int

	// Caret returns the caret position.
	Caret() (line, col int)

	// SetCaret moves the caret. Implementations clamp to the buffer.
	SetCaret(line, col int)

	// Select sets the selection from (fromLine, fromCol) up to but not
	// including (toLine, toCol), leaving the caret at the end point.
	Select(fromLine, fromCol, toLine, toCol int)

	// Deselect clears any selection without moving the caret.
	Deselect()

	// HasSelection reports whether a selection is active.
	HasSelection() bool

	// FirstVisibleLine returns the top line of the viewport.
	FirstVisibleLine() int

	// SetFirstVisibleLine scrolls the viewport so that line is at the
	// top, clamped to the buffer.
	SetFirstVisibleLine(line int)

	// VisibleLineCount returns how many lines fit in the viewport.
	VisibleLineCount() int

	// CenterOnCaret scrolls so the caret line sits mid-viewport.
	CenterOnCaret()
}

// Folder is the optional fold surface of a widget. Widgets that cannot
// fold may implement these as no-ops.
type Folder interface {
	// CanFold reports whether the line starts a foldable region.
	CanFold(line int) bool

	// IsFolded reports whether the line is currently folded.
	IsFolded(line int) bool

	// Fold collapses the region at line.
	Fold(line int)

	// Unfold expands the region at line.
	Unfold(line int)

	// ToggleFold flips the fold state at line.
	ToggleFold(line int)

	// FoldAll collapses every foldable region.
	FoldAll()

	// UnfoldAll expands every region.
	UnfoldAll()
}

// Wrapper exposes soft-wrap geometry for display-line motions. A
// widget that never wraps returns 1 from WrapCount and treats wrap
// index 0 as the whole line.
type Wrapper interface {
	// WrapCount returns how many display rows the line occupies.
	WrapCount(line int) int

	// CaretWrapIndex returns which display row of its line the caret
	// is on, 0-based.
	CaretWrapIndex() int

	// WrapSegments returns the line text split at the wrap points, in
	// order. A line that fits returns one segment.
	WrapSegments(line int) []string
}

// TextWidget is the full widget surface the bridge binds to. The
// router reaches folds and wrap geometry through it for the z and g
// display chords.
type TextWidget interface {
	Widget
	Folder
	Wrapper
}
