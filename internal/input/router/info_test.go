package router

import (
	"testing"
)

func TestCharInfoFormats(t *testing.T) {
	tests := []struct {
		name string
		line string
		col  int
		want string
	}{
		{"letter", "hello", 0, "<h> 104, Hex 68, Oct 150"},
		{"space", "a b", 1, "<Space> 32, Hex 20, Oct 040"},
		{"tab", "\tx", 0, "<Tab> 9, Hex 09, Oct 011"},
		{"unicode", "é", 0, "<é> 233, Hex e9, Oct 351"},
		{"past end of line", "", 0, "NUL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.line)
			h.widget.SetCaret(0, tt.col)
			h.typeKeys("ga")
			if got := h.editor.lastEcho(); got != tt.want {
				t.Errorf("echo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileInfoNewFile(t *testing.T) {
	h := newHarness("only line")
	h.pressCtrl('g')
	if got := h.editor.lastEcho(); got != "\"[New File]\" line 1 of 1 --100%--" {
		t.Errorf("echo = %q", got)
	}
}

func TestGotoFileUnderCursor(t *testing.T) {
	h := newHarness(`load("res://scripts/enemy.gd")`)
	h.widget.SetCaret(0, 10)

	h.typeKeys("gf")
	if len(h.editor.opened) != 1 || h.editor.opened[0] != "res://scripts/enemy.gd" {
		t.Errorf("opened = %v, want the path under the caret", h.editor.opened)
	}
	if got := h.stream(); got != "" {
		t.Errorf("stream = %q, want nothing forwarded", got)
	}
	if got := h.r.Chord(); got != "" {
		t.Errorf("chord = %q, want cleared", got)
	}
	if len(h.r.jumps.entries) != 1 {
		t.Errorf("jump list length = %d, want 1", len(h.r.jumps.entries))
	}
}

func TestGotoFileNoPathUnderCursor(t *testing.T) {
	h := newHarness(`load("res://x.gd")`)
	h.widget.SetCaret(0, 4)
	h.typeKeys("gf")
	if len(h.editor.opened) != 0 {
		t.Errorf("opened = %v, want nothing", h.editor.opened)
	}
}

func TestOpenURLUnderCursor(t *testing.T) {
	tests := []struct {
		name string
		line string
		col  int
		want []string
	}{
		{"full url", "docs at https://godotengine.org/en/latest here", 12,
			[]string{"https://godotengine.org/en/latest"}},
		{"bare domain", "see godotengine.org for details", 6,
			[]string{"https://godotengine.org"}},
		{"plain word", "nothing to open", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.line)
			h.widget.SetCaret(0, tt.col)
			h.typeKeys("gx")
			if len(h.editor.urls) != len(tt.want) {
				t.Fatalf("urls = %v, want %v", h.editor.urls, tt.want)
			}
			for i := range tt.want {
				if h.editor.urls[i] != tt.want[i] {
					t.Errorf("urls[%d] = %q, want %q", i, h.editor.urls[i], tt.want[i])
				}
			}
		})
	}
}

func TestShowDocumentationWord(t *testing.T) {
	h := newHarness("var velocity = Vector2.ZERO")
	h.widget.SetCaret(0, 6)
	h.press('K')
	if len(h.editor.docWords) != 1 || h.editor.docWords[0] != "velocity" {
		t.Errorf("docWords = %v, want [velocity]", h.editor.docWords)
	}
	if got := h.stream(); got != "" {
		t.Errorf("stream = %q, want nothing forwarded", got)
	}
}

func TestGotoDefinitionLocal(t *testing.T) {
	h := newHarness("move_and_slide()")
	h.typeKeys("gd")
	if h.editor.gotoDefs != 1 {
		t.Errorf("gotoDefs = %d, want 1", h.editor.gotoDefs)
	}
	if got := h.stream(); got != "" {
		t.Errorf("stream = %q, want nothing forwarded", got)
	}
	if len(h.r.jumps.entries) != 1 {
		t.Errorf("jump list length = %d, want 1", len(h.r.jumps.entries))
	}
}

func TestMarksListing(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h := newHarness("text")
		h.runCommand("marks")
		if len(h.editor.printed) != 1 || h.editor.printed[0] != "No marks set" {
			t.Errorf("printed = %v", h.editor.printed)
		}
	})

	t.Run("one mark", func(t *testing.T) {
		h := newHarness("one", "twoo")
		h.widget.SetCaret(1, 2)
		h.typeKeys("ma")
		h.runCommand("marks")
		want := []string{
			"mark  line  col",
			" a       2    2",
		}
		if len(h.editor.printed) != len(want) {
			t.Fatalf("printed = %v, want %v", h.editor.printed, want)
		}
		for i := range want {
			if h.editor.printed[i] != want[i] {
				t.Errorf("printed[%d] = %q, want %q", i, h.editor.printed[i], want[i])
			}
		}
	})
}

func TestRegistersListing(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h := newHarness("text")
		h.runCommand("registers")
		if len(h.editor.printed) != 1 || h.editor.printed[0] != "No registers set" {
			t.Errorf("printed = %v", h.editor.printed)
		}
	})

	t.Run("macro and engine registers", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("qddwq")
		h.typeKeys(`"ayy`)
		h.engine.registers["a"] = "yanked"
		h.engine.registers["\""] = "x\ny"

		h.runCommand("registers")
		want := []string{
			`""   x^Jy`,
			`"a   yanked`,
			`"d   dw`,
		}
		if len(h.editor.printed) != len(want) {
			t.Fatalf("printed = %v, want %v", h.editor.printed, want)
		}
		for i := range want {
			if h.editor.printed[i] != want[i] {
				t.Errorf("printed[%d] = %q, want %q", i, h.editor.printed[i], want[i])
			}
		}
	})
}

func TestJumpsListing(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h := newHarness("text")
		h.runCommand("jumps")
		want := []string{" jump line  col", "   (empty)"}
		if len(h.editor.printed) != 2 || h.editor.printed[0] != want[0] || h.editor.printed[1] != want[1] {
			t.Errorf("printed = %v, want %v", h.editor.printed, want)
		}
	})

	t.Run("after a jump", func(t *testing.T) {
		h := newHarness("text")
		h.typeKeys("gd")
		h.runCommand("jumps")
		want := []string{
			" jump line  col",
			"    1     1    0",
			">          (current)",
		}
		if len(h.editor.printed) != len(want) {
			t.Fatalf("printed = %v, want %v", h.editor.printed, want)
		}
		for i := range want {
			if h.editor.printed[i] != want[i] {
				t.Errorf("printed[%d] = %q, want %q", i, h.editor.printed[i], want[i])
			}
		}
	})
}

func TestChangesListing(t *testing.T) {
	h := newHarness("text")
	h.runCommand("changes")
	want := []string{
		"   (change list not tracked)",
		"   Use undo/redo (u/Ctrl+R) for changes",
	}
	if len(h.editor.printed) != 2 || h.editor.printed[0] != want[0] || h.editor.printed[1] != want[1] {
		t.Errorf("printed = %v, want %v", h.editor.printed, want)
	}
}

func TestTabsListing(t *testing.T) {
	h := newHarness("text")
	h.editor.tabs = []string{"res://scripts/player.gd", "enemy.gd"}
	h.runCommand("ls")
	want := []string{
		"Open buffers:",
		"  1: player.gd",
		"  2: enemy.gd",
	}
	if len(h.editor.printed) != len(want) {
		t.Fatalf("printed = %v, want %v", h.editor.printed, want)
	}
	for i := range want {
		if h.editor.printed[i] != want[i] {
			t.Errorf("printed[%d] = %q, want %q", i, h.editor.printed[i], want[i])
		}
	}
}
