package router

import (
	"gdnvim/internal/input/key"
)

// searchState is the /-or-? prompt. The buffer keeps its prefix rune so
// the committed string can be sent to the engine verbatim.
type searchState struct {
	active bool
	buf    string
}

// findState remembers the last f/F/t/T target for ; and , repeats.
type findState struct {
	ch      rune
	forward bool
	till    bool
	ok      bool
}

func (r *Router) openSearch(forward bool) {
	r.clearPending()
	r.search.active = true
	if forward {
		r.search.buf = "/"
	} else {
		r.search.buf = "?"
	}
	r.local("search-open")
}

func (r *Router) closeSearch() {
	r.search.active = false
	r.search.buf = ""
	r.local("search-close")
}

// handleSearch edits the search prompt. Nothing reaches the engine until
// Enter commits the buffered pattern.
func (r *Router) handleSearch(ev key.Event) bool {
	switch {
	case ev.IsEscape():
		r.closeSearch()
	case ev.IsEnter():
		r.executeSearch()
	case ev.IsBackspace():
		if len(r.search.buf) > 1 {
			rs := []rune(r.search.buf)
			r.search.buf = string(rs[:len(rs)-1])
		}
	default:
		if ev.IsChar() && !ev.IsModified() {
			r.search.buf += string(ev.Rune)
		}
	}
	return true
}

// executeSearch commits the buffered pattern to the engine. A bare
// prefix closes the prompt without searching.
func (r *Router) executeSearch() {
	pattern := r.search.buf
	if len([]rune(pattern)) <= 1 {
		r.closeSearch()
		return
	}
	r.sendRaw(pattern + "<CR>")
	r.engine.PullCursor()
	r.closeSearch()
}

// searchWord forwards * or # and re-reads the engine cursor.
func (r *Router) searchWord(keys string) {
	if r.send(keys) {
		r.engine.PullCursor()
	}
}

// searchNext forwards n or N and re-reads the engine cursor.
func (r *Router) searchNext(forward bool) {
	keys := "n"
	if !forward {
		keys = "N"
	}
	if r.send(keys) {
		r.engine.PullCursor()
	}
}

// findCharForward scans the caret line past the caret for c (f and t).
// On a hit the caret moves and the target is saved for ; and ,.
func (r *Router) findCharForward(c rune, till bool) {
	line, col := r.widget.Caret()
	runes := []rune(r.widget.Line(line))
	for i := col + 1; i < len(runes); i++ {
		if runes[i] == c {
			target := i
			if till {
				target = i - 1
			}
			r.moveCaret(line, target)
			r.finds = findState{ch: c, forward: true, till: till, ok: true}
			return
		}
	}
}

// findCharBackward scans the caret line before the caret for c (F, T).
func (r *Router) findCharBackward(c rune, till bool) {
	line, col := r.widget.Caret()
	runes := []rune(r.widget.Line(line))
	if col > len(runes) {
		col = len(runes)
	}
	for i := col - 1; i >= 0; i-- {
		if runes[i] == c {
			target := i
			if till {
				target = i + 1
			}
			r.moveCaret(line, target)
			r.finds = findState{ch: c, forward: false, till: till, ok: true}
			return
		}
	}
}

// repeatFindChar re-runs the saved find, in the saved direction for ;
// or the opposite for ,.
func (r *Router) repeatFindChar(sameDirection bool) {
	if !r.finds.ok {
		return
	}
	forward := r.finds.forward
	if !sameDirection {
		forward = !forward
	}
	if forward {
		r.findCharForward(r.finds.ch, r.finds.till)
	} else {
		r.findCharBackward(r.finds.ch, r.finds.till)
	}
}
