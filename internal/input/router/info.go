package router

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// scanAround expands from the caret over runes accepted by valid and
// returns the token under the caret, or "" when the caret sits past the
// end of the line or on a rejected rune.
func (r *Router) scanAround(valid func(rune) bool) string {
	line, col := r.widget.Caret()
	runes := []rune(r.widget.Line(line))
	if col >= len(runes) {
		return ""
	}
	start := col
	for start > 0 && valid(runes[start-1]) {
		start--
	}
	end := col
	for end < len(runes) && valid(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isPathRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("/._-:", c)
}

func isURLRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) ||
		strings.ContainsRune("/:.-_~?#[]@!$&'()*+,;=%", c)
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

// gotoFileUnderCursor opens the path-like token under the caret (gf).
func (r *Router) gotoFileUnderCursor() {
	r.addToJumpList()
	path := r.scanAround(isPathRune)
	if path == "" {
		return
	}
	r.local("goto-file")
	r.editor.OpenFile(path)
}

// openURLUnderCursor opens the URL under the caret in the host browser
// (gx). A bare domain gets an https:// prefix.
func (r *Router) openURLUnderCursor() {
	url := r.scanAround(isURLRune)
	if url == "" {
		return
	}
	switch {
	case strings.HasPrefix(url, "http://"),
		strings.HasPrefix(url, "https://"),
		strings.HasPrefix(url, "file://"),
		strings.Contains(url, "://"):
	case strings.Contains(url, ".") && !strings.HasPrefix(url, "."):
		url = "https://" + url
	default:
		return
	}
	r.local("open-url")
	r.editor.OpenURL(url)
}

// gotoDefinition delegates gd to the host's language services.
func (r *Router) gotoDefinition() {
	r.addToJumpList()
	r.local("goto-definition")
	r.editor.GotoDefinition()
}

// showDocumentation looks up help for the word under the caret (K).
func (r *Router) showDocumentation() {
	word := r.scanAround(isWordRune)
	if word == "" {
		return
	}
	r.local("documentation")
	r.editor.ShowDocumentation(word)
}

// showCharInfo echoes the codepoint under the caret (ga).
func (r *Router) showCharInfo() {
	r.local("char-info")
	line, col := r.widget.Caret()
	runes := []rune(r.widget.Line(line))
	if col >= len(runes) {
		r.editor.Echo("NUL")
		return
	}
	c := runes[col]
	code := c
	shown := string(c)
	if unicode.IsControl(c) || c == ' ' {
		switch c {
		case ' ':
			shown = "Space"
		case '\t':
			shown = "Tab"
		case '\n':
			shown = "NL"
		case '\r':
			shown = "CR"
		default:
			shown = "Ctrl"
		}
	}
	r.editor.Echo(fmt.Sprintf("<%s> %d, Hex %02x, Oct %03o", shown, code, code, code))
}

// showFileInfo echoes the file name and position (Ctrl+G).
func (r *Router) showFileInfo() {
	r.local("file-info")
	line, _ := r.widget.Caret()
	total := r.widget.LineCount()
	percent := 0
	if total > 0 {
		percent = (line + 1) * 100 / total
	}
	name := r.editor.CurrentFile()
	if name == "" {
		name = "[New File]"
	} else if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	r.editor.Echo(fmt.Sprintf("\"%s\" line %d of %d --%d%%--", name, line+1, total, percent))
}

// joinNoSpace joins lines without inserting a space (gJ). The engine
// helper preserves any count already sent.
func (r *Router) joinNoSpace() {
	r.macros.record("gJ")
	r.local("join-no-space")
	r.engine.JoinNoSpace()
}

func (r *Router) showMarks() {
	if len(r.marks) == 0 {
		r.editor.Print("No marks set")
		return
	}
	names := make([]rune, 0, len(r.marks))
	for mark := range r.marks {
		names = append(names, mark)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	r.editor.Print("mark  line  col")
	for _, mark := range names {
		p := r.marks[mark]
		r.editor.Print(fmt.Sprintf(" %c    %4d  %3d", mark, p.line+1, p.col))
	}
}

// registerPreview renders register content for :registers, with
// newlines shown as ^J and long content truncated.
func registerPreview(content string) string {
	content = strings.ReplaceAll(content, "\n", "^J")
	runes := []rune(content)
	if len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	return content
}

// showRegisters lists macro registers from the local store and every
// register the engine has been asked to use.
func (r *Router) showRegisters() {
	rows := make(map[rune]string)
	for reg, keys := range r.macros.store {
		rows[reg] = strings.Join(keys, "")
	}
	names := make(map[rune]struct{}, len(r.usedRegs)+1)
	for reg := range r.usedRegs {
		names[reg] = struct{}{}
	}
	names['"'] = struct{}{}
	for reg := range names {
		if _, ok := rows[reg]; ok {
			continue
		}
		content, err := r.engine.RegisterContents(string(reg))
		if err != nil || content == "" {
			continue
		}
		rows[reg] = content
	}
	if len(rows) == 0 {
		r.editor.Print("No registers set")
		return
	}
	regs := make([]rune, 0, len(rows))
	for reg := range rows {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	for _, reg := range regs {
		r.editor.Print(fmt.Sprintf("\"%c   %s", reg, registerPreview(rows[reg])))
	}
}

func (r *Router) showJumps() {
	r.editor.Print(" jump line  col")
	if len(r.jumps.entries) == 0 {
		r.editor.Print("   (empty)")
		return
	}
	for i, e := range r.jumps.entries {
		marker := " "
		if i == r.jumps.idx {
			marker = ">"
		}
		r.editor.Print(fmt.Sprintf("%s%4d  %4d  %3d", marker, i+1, e.line+1, e.col))
	}
	if r.jumps.idx >= len(r.jumps.entries) {
		r.editor.Print(">          (current)")
	}
}

func (r *Router) showChanges() {
	r.editor.Print("   (change list not tracked)")
	r.editor.Print("   Use undo/redo (u/Ctrl+R) for changes")
}

func (r *Router) showTabs() {
	r.editor.Print("Open buffers:")
	for i, name := range r.editor.Tabs() {
		if j := strings.LastIndexByte(name, '/'); j >= 0 {
			name = name[j+1:]
		}
		r.editor.Print(fmt.Sprintf("  %d: %s", i+1, name))
	}
}
