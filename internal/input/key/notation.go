package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// ParseSpec parses a single key specification into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Bracket notation: "<C-s>", "<A-f>", "<C-A-p>", "<CR>", "<Esc>", "<F5>"
//   - Aliases: "<Enter>" and "<Return>" for <CR>, "<Escape>" for <Esc>
func ParseSpec(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") {
		if !strings.HasSuffix(spec, ">") || len(spec) < 3 {
			return Event{}, ErrUnmatchedBracket
		}
		return parseBracketed(spec[1 : len(spec)-1])
	}

	runes := []rune(spec)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	r := runes[0]
	var mods Modifier
	if unicode.IsUpper(r) {
		mods = ModShift
	}
	return NewRuneEvent(r, mods), nil
}

// ParseNotation parses a full notation string into the sequence of events
// it encodes. Plain characters stand for themselves; bracketed tokens are
// parsed as specs. Used to replay recorded macros and to interpret keymap
// bindings.
//
//	ParseNotation("dw<Esc>x") -> [d, w, <Esc>, x]
func ParseNotation(s string) ([]Event, error) {
	var events []Event
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '<' {
			var mods Modifier
			if unicode.IsUpper(r) {
				mods = ModShift
			}
			events = append(events, NewRuneEvent(r, mods))
			continue
		}
		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '>' {
				end = j
				break
			}
		}
		if end < 0 || end == i+1 {
			// A bare "<" with no closing bracket is a literal character.
			events = append(events, NewRuneEvent('<', ModNone))
			continue
		}
		ev, err := parseBracketed(string(runes[i+1 : end]))
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", i, err)
		}
		events = append(events, ev)
		i = end
	}
	return events, nil
}

// MustParseSpec parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParseSpec(spec string) Event {
	event, err := ParseSpec(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// parseBracketed parses the inside of a <...> token like "C-s", "A-F4",
// "CR", "Esc".
func parseBracketed(inner string) (Event, error) {
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")

	var mods Modifier
	keyPart := parts[len(parts)-1]
	if keyPart == "" && len(parts) >= 2 {
		// "<C-->" encodes a modified hyphen.
		keyPart = "-"
		parts = parts[:len(parts)-1]
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "c":
			mods = mods.With(ModCtrl)
		case "a", "m":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		case "d":
			mods = mods.With(ModMeta)
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}

	if key, ok := specialFromName(strings.ToLower(keyPart)); ok {
		return NewSpecialEvent(key, mods), nil
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return NewRuneEvent(' ', mods), nil
	case "lt":
		return NewRuneEvent('<', mods), nil
	case "gt":
		return NewRuneEvent('>', mods), nil
	case "bar":
		return NewRuneEvent('|', mods), nil
	case "bslash":
		return NewRuneEvent('\\', mods), nil
	case "nl":
		return NewSpecialEvent(KeyEnter, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		}
		return NewRuneEvent(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// specialFromName resolves a lowercase key name to its named key.
func specialFromName(name string) (Key, bool) {
	switch name {
	case "cr", "return", "enter":
		return KeyEnter, true
	case "esc", "escape":
		return KeyEscape, true
	case "tab":
		return KeyTab, true
	case "bs", "backspace":
		return KeyBackspace, true
	case "del", "delete":
		return KeyDelete, true
	case "ins", "insert":
		return KeyInsert, true
	case "up":
		return KeyUp, true
	case "down":
		return KeyDown, true
	case "left":
		return KeyLeft, true
	case "right":
		return KeyRight, true
	case "home":
		return KeyHome, true
	case "end":
		return KeyEnd, true
	case "pageup", "pgup":
		return KeyPageUp, true
	case "pagedown", "pgdn":
		return KeyPageDown, true
	}
	if len(name) >= 2 && len(name) <= 3 && name[0] == 'f' {
		n := 0
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				return KeyNone, false
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 12 {
			return KeyF1 + Key(n-1), true
		}
	}
	return KeyNone, false
}
