package router

const jumpListMax = 100

// jumpList is the router-local jump history shown by :jumps. Engine
// jumps (Ctrl-O / Ctrl-I) stay with the engine; this list records the
// host-side jumps: marks, :N, gd, gf.
type jumpList struct {
	entries []position
	idx     int
}

// add appends a position. A forward tail beyond the current index is
// discarded first, consecutive duplicates collapse, and the list is
// capped at jumpListMax.
func (j *jumpList) add(p position) {
	if j.idx < len(j.entries) {
		j.entries = j.entries[:j.idx]
	}
	if n := len(j.entries); n > 0 && j.entries[n-1] == p {
		j.idx = len(j.entries)
		return
	}
	j.entries = append(j.entries, p)
	if len(j.entries) > jumpListMax {
		j.entries = j.entries[1:]
	}
	j.idx = len(j.entries)
}

// addToJumpList records the current caret position.
func (r *Router) addToJumpList() {
	line, col := r.widget.Caret()
	r.jumps.add(position{line: line, col: col})
}
