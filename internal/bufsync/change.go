package bufsync

import "strings"

// Change is the one shape used both for inbound line events and for
// the instruction applied to the widget: replace [First, Last) with
// Lines. Last < 0 means to end of buffer. Empty Lines is a deletion;
// First == Last is an insertion.
type Change struct {
	First int64
	Last  int64
	Lines []string
}

// LineEditor is the slice of the host widget the sync layer mutates.
type LineEditor interface {
	LineCount() int
	Text() string
	SetText(text string)
	InsertLine(idx int, text string)
	RemoveLine(idx int)
}

// Apply writes the change into the editor. Removals run bottom-up so
// indices stay valid; replacing the whole buffer goes through SetText
// to avoid line-count drift; inserting past the last line appends via
// SetText because the widget cannot insert beyond its end.
func (c Change) Apply(ed LineEditor) {
	lineCount := ed.LineCount()
	first := int(c.First)
	if first < 0 {
		first = 0
	}
	last := lineCount
	if c.Last >= 0 {
		last = int(c.Last)
	}

	if first == 0 && last >= lineCount && len(c.Lines) > 0 {
		ed.SetText(strings.Join(c.Lines, "\n"))
		return
	}

	switch {
	case len(c.Lines) == 0:
		removeRange(ed, first, last)
	case first == last:
		if first >= ed.LineCount() {
			appendLines(ed, c.Lines)
			return
		}
		for i, line := range c.Lines {
			ed.InsertLine(first+i, line)
		}
	default:
		removeRange(ed, first, last)
		for i, line := range c.Lines {
			at := first + i
			if at >= ed.LineCount() {
				appendLines(ed, c.Lines[i:])
				return
			}
			ed.InsertLine(at, line)
		}
	}
}

func removeRange(ed LineEditor, first, last int) {
	if last > ed.LineCount() {
		last = ed.LineCount()
	}
	for i := last - 1; i >= first; i-- {
		if i < ed.LineCount() {
			ed.RemoveLine(i)
		}
	}
}

func appendLines(ed LineEditor, lines []string) {
	text := ed.Text()
	joined := strings.Join(lines, "\n")
	switch {
	case text == "":
		ed.SetText(joined)
	case strings.HasSuffix(text, "\n"):
		ed.SetText(text + joined)
	default:
		ed.SetText(text + "\n" + joined)
	}
}
