package key

import (
	"testing"
)

func TestEventEngineString(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		// Bare modifier presses never translate.
		{"shift alone", NewSpecialEvent(KeyShift, ModShift), ""},
		{"ctrl alone", NewSpecialEvent(KeyCtrl, ModCtrl), ""},
		{"alt alone", NewSpecialEvent(KeyAlt, ModAlt), ""},
		{"capslock alone", NewSpecialEvent(KeyCapsLock, ModNone), ""},

		// Ctrl-[ is Escape.
		{"ctrl bracket", NewRuneEvent('[', ModCtrl), "<Esc>"},

		// Named keys.
		{"escape", NewSpecialEvent(KeyEscape, ModNone), "<Esc>"},
		{"enter", NewSpecialEvent(KeyEnter, ModNone), "<CR>"},
		{"tab", NewSpecialEvent(KeyTab, ModNone), "<Tab>"},
		{"backspace", NewSpecialEvent(KeyBackspace, ModNone), "<BS>"},
		{"delete", NewSpecialEvent(KeyDelete, ModNone), "<Del>"},
		{"up", NewSpecialEvent(KeyUp, ModNone), "<Up>"},
		{"down", NewSpecialEvent(KeyDown, ModNone), "<Down>"},
		{"left", NewSpecialEvent(KeyLeft, ModNone), "<Left>"},
		{"right", NewSpecialEvent(KeyRight, ModNone), "<Right>"},
		{"home", NewSpecialEvent(KeyHome, ModNone), "<Home>"},
		{"end", NewSpecialEvent(KeyEnd, ModNone), "<End>"},
		{"pageup", NewSpecialEvent(KeyPageUp, ModNone), "<PageUp>"},
		{"pagedown", NewSpecialEvent(KeyPageDown, ModNone), "<PageDown>"},
		{"f1", NewSpecialEvent(KeyF1, ModNone), "<F1>"},
		{"f5", NewSpecialEvent(KeyF5, ModNone), "<F5>"},
		{"f12", NewSpecialEvent(KeyF12, ModNone), "<F12>"},

		// Space is sent literally.
		{"space", NewRuneEvent(' ', ModNone), " "},
		{"shift space", NewRuneEvent(' ', ModShift), " "},

		// Printable characters carry Shift in the codepoint.
		{"lowercase", NewRuneEvent('a', ModNone), "a"},
		{"uppercase", NewRuneEvent('A', ModShift), "A"},
		{"digit", NewRuneEvent('5', ModNone), "5"},
		{"shifted digit", NewRuneEvent('%', ModShift), "%"},
		{"colon", NewRuneEvent(':', ModShift), ":"},
		{"less than", NewRuneEvent('<', ModShift), "<"},
		{"unicode", NewRuneEvent('é', ModNone), "é"},

		// Ctrl and Alt wrap the base.
		{"ctrl letter", NewRuneEvent('r', ModCtrl), "<C-r>"},
		{"ctrl uppercase letter", NewRuneEvent('R', ModCtrl | ModShift), "<C-S-r>"},
		{"alt letter", NewRuneEvent('j', ModAlt), "<A-j>"},
		{"ctrl alt letter", NewRuneEvent('x', ModCtrl | ModAlt), "<C-A-x>"},
		{"ctrl digit", NewRuneEvent('6', ModCtrl), "<C-6>"},
		{"ctrl punctuation", NewRuneEvent('^', ModCtrl | ModShift), "<C-^>"},
		{"ctrl space", NewRuneEvent(' ', ModCtrl), "<C- >"},

		// Modified named keys.
		{"ctrl enter", NewSpecialEvent(KeyEnter, ModCtrl), "<C-CR>"},
		{"shift tab", NewSpecialEvent(KeyTab, ModShift), "<S-Tab>"},
		{"ctrl shift tab", NewSpecialEvent(KeyTab, ModCtrl | ModShift), "<C-S-Tab>"},
		{"alt f4", NewSpecialEvent(KeyF4, ModAlt), "<A-F4>"},

		// Untranslatable events.
		{"none", Event{}, ""},
		{"zero rune", NewRuneEvent(0, ModNone), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.EngineString(); got != tt.want {
				t.Errorf("EngineString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventIsModifierOnly(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"shift key", NewSpecialEvent(KeyShift, ModShift), true},
		{"ctrl key", NewSpecialEvent(KeyCtrl, ModCtrl), true},
		{"alt key", NewSpecialEvent(KeyAlt, ModAlt), true},
		{"meta key", NewSpecialEvent(KeyMeta, ModMeta), true},
		{"capslock", NewSpecialEvent(KeyCapsLock, ModNone), true},
		{"numlock", NewSpecialEvent(KeyNumLock, ModNone), true},
		{"ctrl plus letter", NewRuneEvent('c', ModCtrl), false},
		{"plain letter", NewRuneEvent('a', ModNone), false},
		{"escape", NewSpecialEvent(KeyEscape, ModNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsModifierOnly(); got != tt.want {
				t.Errorf("IsModifierOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventIsEscape(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"escape key", NewSpecialEvent(KeyEscape, ModNone), true},
		{"ctrl bracket", NewRuneEvent('[', ModCtrl), true},
		{"shift escape", NewSpecialEvent(KeyEscape, ModShift), true},
		{"ctrl escape", NewSpecialEvent(KeyEscape, ModCtrl), false},
		{"plain bracket", NewRuneEvent('[', ModNone), false},
		{"letter", NewRuneEvent('a', ModNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsEscape(); got != tt.want {
				t.Errorf("IsEscape() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventIsChar(t *testing.T) {
	if !NewRuneEvent('x', ModNone).IsChar() {
		t.Error("expected 'x' to be a char")
	}
	if !NewRuneEvent('é', ModNone).IsChar() {
		t.Error("expected 'é' to be a char")
	}
	if NewRuneEvent(0, ModNone).IsChar() {
		t.Error("expected zero rune not to be a char")
	}
	if NewSpecialEvent(KeyEscape, ModNone).IsChar() {
		t.Error("expected Escape not to be a char")
	}
}

func TestEventIsModified(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"plain letter", NewRuneEvent('a', ModNone), false},
		{"shifted letter", NewRuneEvent('A', ModShift), false},
		{"ctrl letter", NewRuneEvent('a', ModCtrl), true},
		{"alt letter", NewRuneEvent('a', ModAlt), true},
		{"shift tab", NewSpecialEvent(KeyTab, ModShift), true},
		{"plain tab", NewSpecialEvent(KeyTab, ModNone), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsModified(); got != tt.want {
				t.Errorf("IsModified() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventEquals(t *testing.T) {
	a := NewRuneEvent('a', ModCtrl)
	b := NewRuneEvent('a', ModCtrl)
	if !a.Equals(b) {
		t.Error("expected identical events to be equal regardless of timestamp")
	}
	if a.Equals(NewRuneEvent('b', ModCtrl)) {
		t.Error("expected different runes to differ")
	}
	if a.Equals(NewRuneEvent('a', ModAlt)) {
		t.Error("expected different modifiers to differ")
	}
}
