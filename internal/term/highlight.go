package term

import (
	"path/filepath"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
)

// highlightCacheMax bounds the tokenized-line cache. The cache is
// dropped wholesale at the cap; lines in view repopulate it within a
// frame.
const highlightCacheMax = 4096

// span is one styled run of a line, in rune offsets.
type span struct {
	start int
	end   int
	style tcell.Style
}

// highlighter tokenizes buffer lines with chroma. Lines are lexed one
// at a time and cached by their text, so edits invalidate naturally
// and scrolling costs nothing. Constructs that cross lines re-sync at
// the next line start.
type highlighter struct {
	mu    sync.Mutex
	lexer chroma.Lexer
	style *chroma.Style
	base  tcell.Style
	cache map[string][]span
}

func newHighlighter(theme string) *highlighter {
	sty := styles.Get(theme)
	if sty == nil {
		sty = styles.Fallback
	}
	h := &highlighter{
		style: sty,
		cache: make(map[string][]span),
	}
	h.base = tcell.StyleDefault
	if bg := sty.Get(chroma.Background).Background; bg.IsSet() {
		h.base = h.base.Background(chromaColor(bg))
	}
	return h
}

// SetFile picks the lexer for path by filename, falling back to plain
// text. The cache goes with the old lexer.
func (h *highlighter) SetFile(path string) {
	var lex chroma.Lexer
	if path != "" {
		lex = lexers.Match(filepath.Base(path))
	}
	if lex == nil {
		lex = lexers.Fallback
	}
	lex = chroma.Coalesce(lex)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lexer = lex
	h.cache = make(map[string][]span)
}

// Base returns the pane style for the active theme.
func (h *highlighter) Base() tcell.Style { return h.base }

// Line returns the styled spans covering one line of text.
func (h *highlighter) Line(text string) []span {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.cache[text]; ok {
		return s
	}
	s := h.tokenizeLocked(text)
	if len(h.cache) >= highlightCacheMax {
		h.cache = make(map[string][]span)
	}
	h.cache[text] = s
	return s
}

func (h *highlighter) tokenizeLocked(text string) []span {
	if h.lexer == nil || text == "" {
		return nil
	}
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}
	// Lexers with ensure_nl tokenise a synthetic trailing newline;
	// clamp spans to the input.
	total := runeLen(text)
	var out []span
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		n := runeLen(tok.Value)
		if n == 0 {
			continue
		}
		end := pos + n
		if end > total {
			end = total
		}
		if st, ok := h.tokenStyle(tok.Type); ok && end > pos {
			out = append(out, span{start: pos, end: end, style: st})
		}
		pos += n
	}
	return out
}

// tokenStyle maps a chroma token type onto the pane's base style. ok
// is false for tokens the theme leaves unstyled.
func (h *highlighter) tokenStyle(tt chroma.TokenType) (tcell.Style, bool) {
	entry := h.style.Get(tt)
	st := h.base
	ok := false
	if entry.Colour.IsSet() {
		st = st.Foreground(chromaColor(entry.Colour))
		ok = true
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
		ok = true
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
		ok = true
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
		ok = true
	}
	return st, ok
}

func chromaColor(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}
