package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHighlighterBase(t *testing.T) {
	h := newHighlighter("monokai")
	if h.Base() == tcell.StyleDefault {
		t.Fatal("monokai base style has no background")
	}
	_, bg, _ := h.Base().Decompose()
	if want := tcell.NewRGBColor(0x27, 0x28, 0x22); bg != want {
		t.Errorf("base background = %v, want %v", bg, want)
	}
}

func TestHighlighterUnknownTheme(t *testing.T) {
	h := newHighlighter("definitely-not-a-theme")
	h.SetFile("x.go")
	h.Line("package main")
}

func TestHighlighterNoLexer(t *testing.T) {
	h := newHighlighter("monokai")
	if got := h.Line("package main"); got != nil {
		t.Errorf("Line without a lexer = %v, want nil", got)
	}
}

func TestHighlighterEmptyLine(t *testing.T) {
	h := newHighlighter("monokai")
	h.SetFile("main.go")
	if got := h.Line(""); got != nil {
		t.Errorf("Line(%q) = %v, want nil", "", got)
	}
}

func TestHighlighterPlainText(t *testing.T) {
	h := newHighlighter("monokai")
	h.SetFile("")
	spans := h.Line("hello")
	if len(spans) != 1 {
		t.Fatalf("plain text spans = %v, want one run", spans)
	}
	if spans[0].start != 0 || spans[0].end != 5 {
		t.Errorf("span = [%d, %d), want [0, 5)", spans[0].start, spans[0].end)
	}
}

func TestHighlighterGoSource(t *testing.T) {
	h := newHighlighter("monokai")
	h.SetFile("main.go")
	const line = "package main"
	spans := h.Line(line)
	if len(spans) < 2 {
		t.Fatalf("spans = %v, want keyword and identifier runs", spans)
	}
	for i, sp := range spans {
		if sp.start >= sp.end {
			t.Errorf("span %d = [%d, %d), want non-empty", i, sp.start, sp.end)
		}
		if i > 0 && sp.start < spans[i-1].end {
			t.Errorf("span %d overlaps the previous one", i)
		}
	}
	if last := spans[len(spans)-1]; last.end > runeLen(line) {
		t.Errorf("last span ends at %d, line has %d runes", last.end, runeLen(line))
	}
	if spans[0].start != 0 {
		t.Errorf("first span starts at %d, want 0", spans[0].start)
	}

	base := h.Base()
	if styleAt(spans, 0, base) == base {
		t.Error("keyword styled as base text")
	}
	if styleAt(spans, 0, base) == styleAt(spans, 9, base) {
		t.Error("keyword and identifier share a style")
	}
}

func TestHighlighterCache(t *testing.T) {
	h := newHighlighter("monokai")
	h.SetFile("main.go")
	first := h.Line("package main")
	second := h.Line("package main")
	if len(first) == 0 || len(second) == 0 {
		t.Fatal("no spans for go source")
	}
	if &first[0] != &second[0] {
		t.Error("repeated Line call re-tokenized instead of hitting the cache")
	}

	// Switching files drops the cache along with the lexer.
	h.SetFile("main.go")
	third := h.Line("package main")
	if len(third) == 0 {
		t.Fatal("no spans after SetFile")
	}
	if &third[0] == &first[0] {
		t.Error("SetFile kept the old cache")
	}
}
