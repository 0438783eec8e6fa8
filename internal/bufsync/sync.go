// Package bufsync arbitrates buffer content ownership between the
// engine and the host widget. The engine's change counter is the
// single source of truth: every event is classified against it, echoes
// of the bridge's own pushes are silenced, and a counter gap forces a
// full resync instead of silent divergence.
//
// A Tracker covers one attached buffer and is reset on detach or tab
// switch. It is owned by the bridge turn and is not safe for
// concurrent use.
package bufsync

// Verdict classifies one inbound buffer event.
type Verdict int

const (
	// VerdictApply is an engine-originated change the widget needs.
	VerdictApply Verdict = iota
	// VerdictInitialEcho replays the initial upload; dropped.
	VerdictInitialEcho
	// VerdictEcho replays a change the bridge pushed; dropped.
	VerdictEcho
	// VerdictStale is a duplicate or out-of-date counter; dropped.
	VerdictStale
	// VerdictGap means at least one event was lost. The only safe
	// recovery is a full resync.
	VerdictGap
)

func (v Verdict) String() string {
	switch v {
	case VerdictApply:
		return "apply"
	case VerdictInitialEcho:
		return "initial-echo"
	case VerdictEcho:
		return "echo"
	case VerdictStale:
		return "stale"
	case VerdictGap:
		return "gap"
	default:
		return "unknown"
	}
}

// Tracker holds the sync state for one attached buffer.
type Tracker struct {
	// counter is the last change counter observed, -1 until known.
	counter int64

	// applying is raised while an engine change is being written into
	// the widget, so the widget's change signal does not re-enter.
	applying bool

	// pendingEchoes maps an expected future counter to the change the
	// bridge pushed to produce it.
	pendingEchoes map[int64]Change

	attached bool

	// initial absorbs the natural echo of the first upload: events
	// with counter <= initial are dropped until one above it arrives.
	initial    int64
	hasInitial bool

	// lineCount mirrors the engine buffer's line count, maintained
	// from accepted line events. Used to clamp cursor positions.
	lineCount int
}

func NewTracker() *Tracker {
	return &Tracker{
		counter:       -1,
		pendingEchoes: make(map[int64]Change),
	}
}

// Reset returns the tracker to the fresh state, as on a new buffer.
func (t *Tracker) Reset() {
	t.counter = -1
	t.applying = false
	t.pendingEchoes = make(map[int64]Change)
	t.attached = false
	t.initial = 0
	t.hasInitial = false
	t.lineCount = 0
}

// SetInitialTick records the counter returned by the initial upload.
// Events at or below it are the upload's own echo.
func (t *Tracker) SetInitialTick(tick int64) {
	t.initial = tick
	t.hasInitial = true
	t.counter = tick
}

// SetAttached records the engine's subscription state. Detaching
// resets everything; stale counters from a previous attachment must
// not survive.
func (t *Tracker) SetAttached(attached bool) {
	if !attached {
		t.Reset()
		return
	}
	t.attached = true
}

func (t *Tracker) Attached() bool { return t.attached }

// ExpectEcho records a change the bridge just pushed into the engine.
// The line event carrying tick will be matched and dropped.
func (t *Tracker) ExpectEcho(tick int64, ch Change) {
	t.pendingEchoes[tick] = ch
}

// PendingEchoes reports how many pushes still await their echo.
func (t *Tracker) PendingEchoes() int { return len(t.pendingEchoes) }

// Counter returns the last observed change counter, -1 if unknown.
func (t *Tracker) Counter() int64 { return t.counter }

// LineCount returns the tracked engine-side line count.
func (t *Tracker) LineCount() int { return t.lineCount }

// SetLineCount seeds the engine-side line count after an upload.
func (t *Tracker) SetLineCount(count int) { t.lineCount = count }

// BeginApply raises the applying flag; the widget's change signal
// checks it to tell engine writes from user edits.
func (t *Tracker) BeginApply() { t.applying = true }

// EndApply lowers the applying flag.
func (t *Tracker) EndApply() { t.applying = false }

// ApplyingFromEngine reports whether an engine change is mid-write.
func (t *Tracker) ApplyingFromEngine() bool { return t.applying }

// OnLines classifies a line event. The caller applies ch to the
// widget only on VerdictApply; VerdictGap demands a full resync.
func (t *Tracker) OnLines(tick int64, ch Change) Verdict {
	if t.hasInitial {
		if tick <= t.initial {
			return VerdictInitialEcho
		}
		t.hasInitial = false
	}
	if t.matchEcho(tick) {
		// The echo still advances the counter, or the next engine
		// change would look like a gap.
		if tick > t.counter {
			t.counter = tick
		}
		return VerdictEcho
	}
	if t.counter >= 0 {
		if tick <= t.counter {
			return VerdictStale
		}
		if tick != t.counter+1 {
			return VerdictGap
		}
	}
	t.counter = tick
	t.trackLineDelta(ch)
	return VerdictApply
}

// OnChangedTick classifies a counter bump with no content change.
// Ticks can jump here; only content events are held to the
// one-by-one rule.
func (t *Tracker) OnChangedTick(tick int64) Verdict {
	if t.hasInitial && tick <= t.initial {
		return VerdictInitialEcho
	}
	if t.matchEcho(tick) {
		if tick > t.counter {
			t.counter = tick
		}
		return VerdictEcho
	}
	if tick <= t.counter {
		return VerdictStale
	}
	t.counter = tick
	return VerdictApply
}

func (t *Tracker) matchEcho(tick int64) bool {
	if _, ok := t.pendingEchoes[tick]; ok {
		delete(t.pendingEchoes, tick)
		return true
	}
	return false
}

func (t *Tracker) trackLineDelta(ch Change) {
	last := ch.Last
	if last < 0 {
		last = int64(t.lineCount)
	}
	removed := int(last - ch.First)
	if removed < 0 {
		removed = 0
	}
	t.lineCount += len(ch.Lines) - removed
	if t.lineCount < 1 {
		t.lineCount = 1
	}
}
