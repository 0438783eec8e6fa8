package router

import (
	"testing"

	"gdnvim/internal/input/key"
)

func TestCountThenMotionSingleStream(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"single digit", "3j", "3j"},
		{"multi digit", "10j", "10j"},
		{"count with operator", "2dd", "2dd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("one", "two", "three")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestZeroLineStartVsCountDigit(t *testing.T) {
	h := newHarness("hello world")
	h.widget.SetCaret(0, 6)

	h.press('0')
	if got := h.stream(); got != "0" {
		t.Errorf("stream = %q, want %q", got, "0")
	}
	if _, col := h.widget.Caret(); col != 0 {
		t.Errorf("caret col = %d, want 0 after bare 0", col)
	}

	// After a count digit, 0 extends the count instead.
	h.widget.SetCaret(0, 6)
	h.engine.sent = nil
	h.typeKeys("30")
	if got := h.stream(); got != "30" {
		t.Errorf("stream = %q, want %q", got, "30")
	}
	if _, col := h.widget.Caret(); col != 6 {
		t.Errorf("caret col = %d, want 6 when 0 is a count digit", col)
	}
	if got := h.r.CountBuffer(); got != "30" {
		t.Errorf("count buffer = %q, want %q", got, "30")
	}
}

func TestLineMotionsMoveLocally(t *testing.T) {
	h := newHarness("   indented text")
	h.widget.SetCaret(0, 10)

	h.press('^')
	if _, col := h.widget.Caret(); col != 3 {
		t.Errorf("caret col = %d after ^, want 3", col)
	}

	h.press('$')
	if _, col := h.widget.Caret(); col != 15 {
		t.Errorf("caret col = %d after $, want 15", col)
	}

	if got := h.stream(); got != "^$" {
		t.Errorf("stream = %q, want %q", got, "^$")
	}
}

func TestFindCharDisambiguation(t *testing.T) {
	tests := []struct {
		name     string
		keys     string
		wantSent string
		wantCol  int
	}{
		{"find forward", "fa", "fa", 4},
		{"till forward", "ta", "ta", 3},
		{"operator find", "dfa", "dfa", 4},
		{"find backward", "Fb", "Fb", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("abcda")
			if tt.name == "find backward" {
				h.widget.SetCaret(0, 4)
			}
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.wantSent {
				t.Errorf("stream = %q, want %q", got, tt.wantSent)
			}
			if _, col := h.widget.Caret(); col != tt.wantCol {
				t.Errorf("caret col = %d, want %d", col, tt.wantCol)
			}
		})
	}
}

func TestScrollChordDisambiguation(t *testing.T) {
	t.Run("zt forwards both keys", func(t *testing.T) {
		h := newHarness("one", "two")
		h.typeKeys("zt")
		if got := h.stream(); got != "zt" {
			t.Errorf("stream = %q, want %q", got, "zt")
		}
	})

	t.Run("za folds locally after forwarding", func(t *testing.T) {
		h := newHarness("func f():", "\tpass")
		h.widget.foldable[0] = true
		h.typeKeys("za")
		if !h.widget.folded[0] {
			t.Error("za did not toggle the fold")
		}
		if got := h.stream(); got != "za" {
			t.Errorf("stream = %q, want %q", got, "za")
		}
	})

	t.Run("zM and zR act on all folds", func(t *testing.T) {
		h := newHarness("one", "two")
		h.typeKeys("zM")
		if !h.widget.foldedAll {
			t.Error("zM did not fold all")
		}
		h.typeKeys("zR")
		if h.widget.foldedAll {
			t.Error("zR did not unfold all")
		}
	})
}

func TestUndoJoinAfterGBecomeOperators(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"bare undo", "u", "u"},
		{"gu forwards as one operator", "gu", "gu"},
		{"bare join", "J", "J"},
		{"gg forwards", "gg", "gg"},
		{"gI forwards", "gI", "gI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("text")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
			if got := h.r.Chord(); tt.keys[0] == 'g' && got != "" {
				t.Errorf("chord = %q after %s, want empty", got, tt.keys)
			}
		})
	}
}

func TestGPrefixLocalHandlers(t *testing.T) {
	t.Run("gJ joins without space through the engine helper", func(t *testing.T) {
		h := newHarness("one", "two")
		h.typeKeys("gJ")
		if h.engine.joinNoSpace != 1 {
			t.Errorf("joinNoSpace calls = %d, want 1", h.engine.joinNoSpace)
		}
		if got := h.stream(); got != "" {
			t.Errorf("stream = %q, want empty", got)
		}
	})

	t.Run("gt and gT switch tabs", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("gt")
		h.typeKeys("gT")
		if h.editor.nexts != 1 || h.editor.prevs != 1 {
			t.Errorf("tab switches = %d/%d, want 1/1", h.editor.nexts, h.editor.prevs)
		}
		if got := h.stream(); got != "" {
			t.Errorf("stream = %q, want empty", got)
		}
	})

	t.Run("ga echoes character info", func(t *testing.T) {
		h := newHarness("hello")
		h.typeKeys("ga")
		if got := h.editor.lastEcho(); got != "<h> 104, Hex 68, Oct 150" {
			t.Errorf("echo = %q", got)
		}
	})

	t.Run("ge moves to previous word end", func(t *testing.T) {
		h := newHarness("foo bar", "baz")
		h.widget.SetCaret(1, 0)
		h.typeKeys("ge")
		if line, col := h.widget.Caret(); line != 0 || col != 6 {
			t.Errorf("caret = (%d,%d), want (0,6)", line, col)
		}
		if got := h.stream(); got != "ge" {
			t.Errorf("stream = %q, want %q", got, "ge")
		}
	})
}

func TestFormatOperatorChord(t *testing.T) {
	tests := []struct {
		name      string
		keys      string
		want      string
		wantChord string
	}{
		{"format line", "gqq", "gqq", ""},
		{"format paragraph motion", "gq}", "gq}", ""},
		{"format text object", "gqip", "gqip", "p"},
		{"format with count", "gq3j", "gq3j", "j"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("some text to format")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
			if got := h.r.Chord(); got != tt.wantChord {
				t.Errorf("chord = %q, want %q", got, tt.wantChord)
			}
		})
	}

	t.Run("escape cancels", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("gq")
		h.r.HandleKey(key.NewSpecialEvent(key.KeyEscape, key.ModNone))
		if got := h.stream(); got != "<Esc>" {
			t.Errorf("stream = %q, want %q", got, "<Esc>")
		}
		if got := h.r.Chord(); got != "" {
			t.Errorf("chord = %q, want empty", got)
		}
	})
}

func TestRegisterOperators(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"yank line", `"ayy`, `"ayy`},
		{"delete with count", `"a3dd`, `"a3dd`},
		{"paste", `"ap`, `"ap`},
		{"paste before", `"aP`, `"aP`},
		{"operator with motion", `"adw`, `"adw`},
		{"change doubled", `"bcc`, `"bcc`},
		{"clipboard register yank", `"+yy`, `"+yy`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("text here")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
			if h.r.selectedReg != 0 {
				t.Errorf("selectedReg = %q after operation, want cleared", h.r.selectedReg)
			}
		})
	}

	t.Run("count digits stay local until the operator", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys(`"a3`)
		if got := h.stream(); got != "" {
			t.Errorf("stream = %q before operator, want empty", got)
		}
		h.typeKeys("dd")
		if got := h.stream(); got != `"a3dd` {
			t.Errorf("stream = %q, want %q", got, `"a3dd`)
		}
	})

	t.Run("non-operator key cancels and keeps its meaning", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys(`"aj`)
		if got := h.stream(); got != "j" {
			t.Errorf("stream = %q, want %q", got, "j")
		}
		if h.r.selectedReg != 0 {
			t.Error("selectedReg survived a non-operator key")
		}
	})

	t.Run("used registers are remembered", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys(`"ayy`)
		if _, ok := h.r.usedRegs['a']; !ok {
			t.Error("register a not recorded as used")
		}
	})
}

func TestIndentOperators(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"indent line", ">>", ">>"},
		{"indent motion", ">j", ">j"},
		{"outdent line", "<<", "<LT><LT>"},
		{"outdent motion", "<j", "<LT>j"},
		{"indent then literal less-than", "><", "><LT>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("\ttext")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBracketCompletions(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"section back", "[[", "[["},
		{"section forward", "]]", "]]"},
		{"mixed", "[]", "[]"},
		{"mixed reverse", "][", "]["},
		{"unmatched open", "[{", "[{"},
		{"unmatched close", "]}", "]}"},
		{"paren open", "[(", "[("},
		{"paren close", "])", "])"},
		{"method back", "[m", "[m"},
		{"method forward", "]m", "]m"},
		{"paste above", "[p", "[p"},
		{"paste below", "]p", "]p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("text")
			h.typeKeys(tt.keys)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
			if got := h.r.Chord(); got != "" {
				t.Errorf("chord = %q, want cleared", got)
			}
		})
	}

	t.Run("unrecognized key falls through", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("[w")
		if got := h.stream(); got != "w" {
			t.Errorf("stream = %q, want %q", got, "w")
		}
	})
}

func TestSaveCloseChords(t *testing.T) {
	t.Run("ZZ saves and closes", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("ZZ")
		if h.editor.saves != 1 {
			t.Errorf("saves = %d, want 1", h.editor.saves)
		}
		if len(h.editor.closes) != 1 || h.editor.closes[0] {
			t.Errorf("closes = %v, want one unforced close", h.editor.closes)
		}
		if got := h.stream(); got != "" {
			t.Errorf("stream = %q, want empty", got)
		}
	})

	t.Run("ZQ discards", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("ZQ")
		if len(h.editor.closes) != 1 || !h.editor.closes[0] {
			t.Errorf("closes = %v, want one forced close", h.editor.closes)
		}
	})

	t.Run("Z then other key clears the chord", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("Zj")
		if got := h.stream(); got != "j" {
			t.Errorf("stream = %q, want %q", got, "j")
		}
	})
}

func TestEscapeDropsChordPrefix(t *testing.T) {
	h := newHarness("text")
	h.press('g')
	if h.r.Chord() != "g" {
		t.Fatalf("chord = %q, want g", h.r.Chord())
	}
	h.r.HandleKey(key.NewSpecialEvent(key.KeyEscape, key.ModNone))
	if got := h.stream(); got != "<Esc>" {
		t.Errorf("stream = %q, want a bare escape", got)
	}
	if h.r.Chord() != "" {
		t.Errorf("chord = %q after escape, want empty", h.r.Chord())
	}
}

func TestVisualModeKeys(t *testing.T) {
	t.Run("o swaps the anchor and pulls selection", func(t *testing.T) {
		h := newHarness("text")
		h.r.SetEngineMode("v")
		h.press('o')
		if got := h.stream(); got != "o" {
			t.Errorf("stream = %q, want %q", got, "o")
		}
		if h.engine.pullSelection != 1 {
			t.Errorf("pullSelection calls = %d, want 1", h.engine.pullSelection)
		}
	})

	t.Run("text object prefixes track as chords", func(t *testing.T) {
		h := newHarness("text")
		h.r.SetEngineMode("v")
		h.press('i')
		if got := h.r.Chord(); got != "i" {
			t.Errorf("chord = %q after i, want i", got)
		}
		h.press('w')
		if got := h.stream(); got != "iw" {
			t.Errorf("stream = %q, want %q", got, "iw")
		}
	})

	t.Run("ctrl-b toggles block visual", func(t *testing.T) {
		h := newHarness("text")
		h.r.SetEngineMode("v")
		h.pressCtrl('b')
		if got := h.stream(); got != "<C-v>" {
			t.Errorf("stream = %q, want %q", got, "<C-v>")
		}
		if h.r.VisualVariant() != '\x16' {
			t.Errorf("variant = %q, want ctrl-v marker", h.r.VisualVariant())
		}
	})
}

func TestViewportMotionsKeepOperator(t *testing.T) {
	h := newHarness("one", "two", "three")
	h.press('d')
	h.press('L')
	if got := h.stream(); got != "dL" {
		t.Errorf("stream = %q, want %q", got, "dL")
	}
	if got := h.r.Chord(); got != "d" {
		t.Errorf("chord = %q, want d still armed for the engine", got)
	}
}

func TestCtrlKeysForward(t *testing.T) {
	tests := []struct {
		name string
		c    rune
		want string
	}{
		{"increment", 'a', "<C-a>"},
		{"decrement", 'x', "<C-x>"},
		{"jump back", 'o', "<C-o>"},
		{"jump forward", 'i', "<C-i>"},
		{"redo", 'r', "<C-r>"},
		{"page down", 'f', "<C-f>"},
		{"page up", 'b', "<C-b>"},
		{"half down", 'd', "<C-d>"},
		{"half up", 'u', "<C-u>"},
		{"window commands pass through", 'w', "<C-w>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("text")
			h.pressCtrl(tt.c)
			if got := h.stream(); got != tt.want {
				t.Errorf("stream = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("page keys cancel a pending operator", func(t *testing.T) {
		h := newHarness("text")
		h.press('d')
		h.pressCtrl('f')
		if got := h.stream(); got != "d<Esc><C-f>" {
			t.Errorf("stream = %q, want %q", got, "d<Esc><C-f>")
		}
		if got := h.r.Chord(); got != "" {
			t.Errorf("chord = %q, want cleared", got)
		}
	})

	t.Run("ctrl-g shows file info", func(t *testing.T) {
		h := newHarness("one", "two", "three", "four")
		h.editor.current = "res://scripts/player.gd"
		h.widget.SetCaret(1, 0)
		h.pressCtrl('g')
		if got := h.editor.lastEcho(); got != "\"player.gd\" line 2 of 4 --50%--" {
			t.Errorf("echo = %q", got)
		}
	})
}

func TestMarkSetAndJump(t *testing.T) {
	h := newHarness("  alpha", "beta")
	h.widget.SetCaret(1, 2)

	h.typeKeys("ma")
	if got := h.stream(); got != "" {
		t.Errorf("stream = %q after ma, want empty", got)
	}

	h.widget.SetCaret(0, 0)
	h.typeKeys("'a")
	if line, col := h.widget.Caret(); line != 1 || col != 0 {
		t.Errorf("caret = (%d,%d) after 'a, want (1,0)", line, col)
	}
	if h.engine.pushCursor != 1 {
		t.Errorf("pushCursor calls = %d, want 1", h.engine.pushCursor)
	}

	h.widget.SetCaret(0, 0)
	h.typeKeys("`a")
	if line, col := h.widget.Caret(); line != 1 || col != 2 {
		t.Errorf("caret = (%d,%d) after `a, want (1,2)", line, col)
	}
}

func TestMarkJumpUnset(t *testing.T) {
	h := newHarness("text")
	h.typeKeys("'z")
	if got := h.editor.lastEcho(); got != "Mark not set: z" {
		t.Errorf("echo = %q", got)
	}
}

func TestMarkKeysRawInOperatorPending(t *testing.T) {
	h := newHarness("text")
	h.r.SetEngineMode("no")
	h.press('\'')
	if got := h.stream(); got != "'" {
		t.Errorf("stream = %q, want a raw quote for text objects", got)
	}
}

func TestRepeatFindFlipsDirection(t *testing.T) {
	h := newHarness("a b a b a")
	h.typeKeys("fa")
	if _, col := h.widget.Caret(); col != 4 {
		t.Fatalf("caret col = %d after fa, want 4", col)
	}
	h.press(';')
	if _, col := h.widget.Caret(); col != 8 {
		t.Errorf("caret col = %d after ;, want 8", col)
	}
	h.press(',')
	if _, col := h.widget.Caret(); col != 4 {
		t.Errorf("caret col = %d after ,, want 4", col)
	}
	if got := h.stream(); got != "fa;," {
		t.Errorf("stream = %q, want %q", got, "fa;,")
	}
}

func TestBracketMatchJump(t *testing.T) {
	h := newHarness("if (a == (b)) :")

	h.widget.SetCaret(0, 3)
	h.press('%')
	if _, col := h.widget.Caret(); col != 12 {
		t.Errorf("caret col = %d, want matching paren at 12", col)
	}

	h.press('%')
	if _, col := h.widget.Caret(); col != 3 {
		t.Errorf("caret col = %d, want back at 3", col)
	}

	if got := h.stream(); got != "%%" {
		t.Errorf("stream = %q, want %q", got, "%%")
	}
}
