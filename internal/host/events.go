package host

// EventKind identifies a widget notification.
type EventKind uint8

// Widget notifications, delivered to the bridge through its single
// OnEvent entry point.
const (
	EventCaretMoved EventKind = iota
	EventTextChanged
	EventLinesEdited
	EventMouseSelection
	EventMouseClick
	EventFocusEntered
	EventFocusExited
	EventResized
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCaretMoved:
		return "caret-moved"
	case EventTextChanged:
		return "text-changed"
	case EventLinesEdited:
		return "lines-edited"
	case EventMouseSelection:
		return "mouse-selection"
	case EventMouseClick:
		return "mouse-click"
	case EventFocusEntered:
		return "focus-entered"
	case EventFocusExited:
		return "focus-exited"
	case EventResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event is one widget notification. Only the fields relevant to Kind
// are set: Line and Col for caret movement and mouse clicks, FromLine
// and ToLine for line edits, and the full From/To pair for mouse
// selections.
type Event struct {
	Kind     EventKind
	Line     int
	Col      int
	FromLine int
	FromCol  int
	ToLine   int
	ToCol    int
}
