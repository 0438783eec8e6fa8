package nvim

import "sync"

// Position is a buffer position as the engine reports it through the
// cursor relay: Row is a 1-based line number, Col a 0-based byte
// offset. Grid positions reuse the type with 0-based screen rows.
type Position struct {
	Row int64
	Col int64
}

// Viewport is the engine's reported window view from win_viewport.
// Toplines are 0-based; Botline is one past the last visible line.
type Viewport struct {
	Topline int64
	Botline int64
	Curline int64
	Curcol  int64
}

// Snapshot is one copy-out of mode and cursor. FromRelay is true when
// the cursor came from the byte-position autocmd relay rather than the
// grid; grid positions are screen coordinates and drift on lines with
// tabs.
type Snapshot struct {
	Mode      string
	Cursor    Position
	FromRelay bool
}

// State holds what the notification handler learned from the engine.
// The mutex is held only to copy data in and out.
type State struct {
	mu sync.Mutex

	hasUpdates   bool
	mode         string
	gridCursor   Position
	actualCursor *Position

	viewport        Viewport
	viewportChanged bool

	bufEvents []BufEvent
	debugMsgs []string

	unknownRedraws uint64
}

func NewState() *State {
	return &State{mode: "normal"}
}

// TakeState clears the updates flag and returns the current mode and
// cursor. Reports false when nothing changed since the last take. The
// relay cursor is consumed; until the next relay fires, takes fall
// back to the grid cursor.
func (s *State) TakeState() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUpdates {
		return Snapshot{}, false
	}
	s.hasUpdates = false
	snap := Snapshot{Mode: s.mode}
	if s.actualCursor != nil {
		snap.Cursor = *s.actualCursor
		snap.FromRelay = true
		s.actualCursor = nil
	} else {
		snap.Cursor = s.gridCursor
	}
	return snap, true
}

// Mode peeks at the current mode without consuming updates.
func (s *State) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// TakeViewport returns the viewport and clears the changed flag.
// Reports false when the viewport has not moved since the last take.
func (s *State) TakeViewport() (Viewport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewportChanged {
		return Viewport{}, false
	}
	s.viewportChanged = false
	return s.viewport, true
}

// ForceViewportChanged raises the changed flag so the next take fires
// even if the values match the previous buffer's. Called after buffer
// switches.
func (s *State) ForceViewportChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewportChanged = true
}

// TakeBufEvents drains the buffer-event queue in arrival order.
func (s *State) TakeBufEvents() []BufEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.bufEvents
	s.bufEvents = nil
	return events
}

// PendingBufEvents reports whether the queue has entries without
// draining it.
func (s *State) PendingBufEvents() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bufEvents) > 0
}

// TakeDebugMessages drains relayed debug messages.
func (s *State) TakeDebugMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.debugMsgs
	s.debugMsgs = nil
	return msgs
}

// UnknownRedraws counts redraw sub-events the handler discarded.
func (s *State) UnknownRedraws() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unknownRedraws
}

func (s *State) setMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

func (s *State) setGridCursor(row, col int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridCursor = Position{Row: row, Col: col}
}

func (s *State) setActualCursor(row, col int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actualCursor = &Position{Row: row, Col: col}
	s.hasUpdates = true
}

func (s *State) setViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v != s.viewport {
		s.viewport = v
		s.viewportChanged = true
	}
}

func (s *State) flagFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasUpdates = true
}

func (s *State) pushBufEvent(ev BufEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bufEvents = append(s.bufEvents, ev)
}

func (s *State) pushDebug(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugMsgs = append(s.debugMsgs, msg)
}

func (s *State) countUnknownRedraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unknownRedraws++
}
