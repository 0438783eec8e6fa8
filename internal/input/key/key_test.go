package key

import (
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyEnter, "Enter"},
		{KeyTab, "Tab"},
		{KeyBackspace, "Backspace"},
		{KeyDelete, "Delete"},
		{KeyInsert, "Insert"},
		{KeyHome, "Home"},
		{KeyEnd, "End"},
		{KeyPageUp, "PageUp"},
		{KeyPageDown, "PageDown"},
		{KeyUp, "Up"},
		{KeyDown, "Down"},
		{KeyLeft, "Left"},
		{KeyRight, "Right"},
		{KeyShift, "Shift"},
		{KeyCtrl, "Ctrl"},
		{KeyAlt, "Alt"},
		{KeyCapsLock, "CapsLock"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeyRune, "Rune"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyIsSpecial(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{KeyEscape, true},
		{KeyEnter, true},
		{KeyTab, true},
		{KeyF1, true},
		{KeyF12, true},
		{KeyUp, true},
		{KeyPageDown, true},
		{KeyShift, false},
		{KeyCtrl, false},
		{KeyNumLock, false},
		{KeyRune, false},
		{KeyNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsSpecial(); got != tt.want {
				t.Errorf("Key.IsSpecial() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyIsModifier(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{KeyShift, true},
		{KeyCtrl, true},
		{KeyAlt, true},
		{KeyMeta, true},
		{KeyCapsLock, true},
		{KeyNumLock, true},
		{KeyEscape, false},
		{KeyRune, false},
		{KeyNone, false},
		{KeyF5, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsModifier(); got != tt.want {
				t.Errorf("Key.IsModifier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyIsFunctionKey(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{KeyF1, true},
		{KeyF6, true},
		{KeyF12, true},
		{KeyEscape, false},
		{KeyRune, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsFunctionKey(); got != tt.want {
				t.Errorf("Key.IsFunctionKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyIsArrowKey(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{KeyUp, true},
		{KeyDown, true},
		{KeyLeft, true},
		{KeyRight, true},
		{KeyHome, false},
		{KeyRune, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsArrowKey(); got != tt.want {
				t.Errorf("Key.IsArrowKey() = %v, want %v", got, tt.want)
			}
		})
	}
}
