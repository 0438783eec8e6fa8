package key

import (
	"fmt"
	"time"
	"unicode"
)

// Event represents a single key press from the host.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events. The host has already
	// applied Shift to the codepoint.
	Rune rune

	// Modifiers contains the active modifier flags.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{
		Key:       key,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a named key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModifierOnly returns true for a bare modifier press (Shift, Ctrl, Alt,
// Meta, CapsLock, NumLock with no character). These are ignored by the
// router: they arrive before the character they modify and must not cancel
// a pending operator.
func (e Event) IsModifierOnly() bool {
	return e.Key.IsModifier()
}

// IsModified returns true if Ctrl, Alt or Meta is held. For character
// events Shift is part of the character and does not count.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// IsEscape returns true for a plain Escape press, or Ctrl-[ which is its
// terminal equivalent.
func (e Event) IsEscape() bool {
	if e.Key == KeyEscape && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0 {
		return true
	}
	return e.Modifiers.HasCtrl() && e.Key == KeyRune && e.Rune == '['
}

// IsEnter returns true for a plain Enter press.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// IsBackspace returns true for a plain Backspace press.
func (e Event) IsBackspace() bool {
	return e.Key == KeyBackspace && e.Modifiers == ModNone
}

// specialName returns the engine notation body for named keys ("Esc",
// "CR", ...) or "" for character and modifier keys.
func (e Event) specialName() string {
	switch e.Key {
	case KeyEscape:
		return "Esc"
	case KeyEnter:
		return "CR"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "BS"
	case KeyDelete:
		return "Del"
	case KeyInsert:
		return "Insert"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyPageUp:
		return "PageUp"
	case KeyPageDown:
		return "PageDown"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	default:
		if e.Key.IsFunctionKey() {
			return fmt.Sprintf("F%d", e.Key-KeyF1+1)
		}
		return ""
	}
}

// EngineString translates the event into the engine's key notation.
// Returns "" for events that have no translation (bare modifiers,
// unknown keys, zero runes).
//
// Rules, in order: modifier-only presses are dropped; Ctrl-[ becomes
// <Esc>; named keys use bracket notation and space is sent literally;
// printable characters use their codepoint with Shift already applied;
// Ctrl and Alt wrap the base into <C-x>, <A-x> or <C-A-x>, with S- added
// only when the base is a named key or an ASCII letter.
func (e Event) EngineString() string {
	if e.IsModifierOnly() {
		return ""
	}

	ctrl := e.Modifiers.HasCtrl()
	alt := e.Modifiers.HasAlt()
	shift := e.Modifiers.HasShift()

	if ctrl && !alt && e.Key == KeyRune && e.Rune == '[' {
		return "<Esc>"
	}

	if name := e.specialName(); name != "" {
		if !ctrl && !alt && !shift {
			return "<" + name + ">"
		}
		mods := ""
		if ctrl {
			mods += "C-"
		}
		if alt {
			mods += "A-"
		}
		if shift {
			mods += "S-"
		}
		return "<" + mods + name + ">"
	}

	if e.Key != KeyRune || e.Rune == 0 {
		return ""
	}

	if e.Rune == ' ' && !ctrl && !alt {
		return " "
	}

	if !ctrl && !alt {
		return string(e.Rune)
	}

	base := e.Rune
	isLetter := base >= 'a' && base <= 'z' || base >= 'A' && base <= 'Z'
	if ctrl && isLetter {
		base = unicode.ToLower(base)
	}
	mods := ""
	if ctrl {
		mods += "C-"
	}
	if alt {
		mods += "A-"
	}
	if shift && isLetter {
		mods += "S-"
	}
	return "<" + mods + string(base) + ">"
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// String returns a debug representation.
func (e Event) String() string {
	if s := e.EngineString(); s != "" {
		return s
	}
	if m := e.Modifiers.String(); m != "" {
		return m + "+" + e.Key.String()
	}
	return e.Key.String()
}
