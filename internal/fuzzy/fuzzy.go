// Package fuzzy ranks candidate strings against a typed query by
// subsequence match quality. It backs the host's quick-open picker,
// so the scoring favors hits in the file name over hits buried in a
// long directory prefix.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// Match is one ranked candidate.
type Match struct {
	// Text is the candidate that matched.
	Text string

	// Score rates the match, higher is better.
	Score int

	// Positions holds the rune indices of the matched query
	// characters, for highlighting.
	Positions []int
}

// Find returns the candidates containing query as a case-insensitive
// subsequence, best first, at most limit entries. An empty query
// returns the first candidates unscored; limit <= 0 means no limit.
func Find(query string, candidates []string, limit int) []Match {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		n := len(candidates)
		if limit > 0 && limit < n {
			n = limit
		}
		out := make([]Match, n)
		for i := 0; i < n; i++ {
			out[i] = Match{Text: candidates[i]}
		}
		return out
	}

	q := []rune(query)
	var out []Match
	for _, cand := range candidates {
		positions, ok := subsequence(q, cand)
		if !ok {
			continue
		}
		out = append(out, Match{
			Text:      cand,
			Score:     score(q, cand, positions),
			Positions: positions,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Text < out[j].Text
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// subsequence locates query inside text with a greedy left-to-right
// scan. Every query rune must appear, in order.
func subsequence(query []rune, text string) ([]int, bool) {
	positions := make([]int, 0, len(query))
	qi := 0
	for i, r := range []rune(strings.ToLower(text)) {
		if qi == len(query) {
			break
		}
		if r == query[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(query) {
		return nil, false
	}
	return positions, true
}

const (
	baseScore     = 100
	runBonus      = 20
	boundaryBonus = 15
	startBonus    = 25
	prefixBonus   = 50
	nameBonus     = 10
	gapPenalty    = 2
	shortLength   = 30
)

// score rates one match. Tight runs, word and path boundaries, and
// hits past the last path separator beat scattered matches deep in a
// long prefix.
func score(query []rune, text string, positions []int) int {
	runes := []rune(text)
	s := baseScore

	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			s += runBonus
		}
	}
	for _, p := range positions {
		if isBoundary(runes, p) {
			s += boundaryBonus
		}
	}
	if positions[0] == 0 {
		s += startBonus
		if hasFoldedPrefix(runes, query) {
			s += prefixBonus
		}
	}
	if gap := positions[len(positions)-1] - positions[0] - len(positions) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	s -= positions[0]

	if sep := lastSeparator(runes); sep >= 0 {
		for _, p := range positions {
			if p > sep {
				s += nameBonus
			}
		}
	}
	if len(runes) < shortLength {
		s += shortLength - len(runes)
	}
	if s < 1 {
		s = 1
	}
	return s
}

// isBoundary reports whether the rune at idx starts a word: the text
// start, anything after whitespace or punctuation (which covers path
// separators), or a camelCase step.
func isBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

func hasFoldedPrefix(runes, query []rune) bool {
	if len(runes) < len(query) {
		return false
	}
	for i, q := range query {
		if unicode.ToLower(runes[i]) != q {
			return false
		}
	}
	return true
}

func lastSeparator(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '/' || runes[i] == '\\' {
			return i
		}
	}
	return -1
}
