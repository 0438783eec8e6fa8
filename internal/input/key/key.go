package key

import "fmt"

// Key identifies a keyboard key. Character keys use KeyRune with the
// character in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys with engine notation.
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys.
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys.
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Modifier keys pressed on their own. These never translate to engine
	// input and must not cancel a pending operator.
	KeyShift
	KeyCtrl
	KeyAlt
	KeyMeta
	KeyCapsLock
	KeyNumLock

	// KeyRune is used for character keys (letters, digits, punctuation).
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
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
	case KeyShift:
		return "Shift"
	case KeyCtrl:
		return "Ctrl"
	case KeyAlt:
		return "Alt"
	case KeyMeta:
		return "Meta"
	case KeyCapsLock:
		return "CapsLock"
	case KeyNumLock:
		return "NumLock"
	case KeyRune:
		return "Rune"
	default:
		if k.IsFunctionKey() {
			return fmt.Sprintf("F%d", k-KeyF1+1)
		}
		return fmt.Sprintf("Key(%d)", k)
	}
}

// IsSpecial returns true if this is a named non-character key.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune && !k.IsModifier()
}

// IsModifier returns true for a modifier key pressed by itself
// (Shift, Ctrl, Alt, Meta, CapsLock, NumLock).
func (k Key) IsModifier() bool {
	return k >= KeyShift && k <= KeyNumLock
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}
