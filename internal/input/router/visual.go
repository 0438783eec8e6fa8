package router

// visualSwapAnchor sends o so the engine swaps the selection anchor
// and cursor, then re-reads the reported range into the widget.
func (r *Router) visualSwapAnchor() {
	if r.send("o") {
		r.engine.PullSelection()
	}
}

// toggleVisualBlock enters visual-block mode (gv alternative for hosts
// where Ctrl+V is paste).
func (r *Router) toggleVisualBlock() {
	r.visualVariant = '\x16'
	if r.send("<C-v>") {
		r.clearChord()
	}
}
