// Package router turns host key events into engine keystreams and
// local editor actions. It owns the modal input state: the current
// engine mode, multi-key chords, count prefixes, pending one-shot
// operators (f/t/r, marks, macros, register selection), the
// command-line and search sub-modes, and the plugin-lifetime
// dictionaries for marks, macros, and the jump list.
//
// The router never talks to the RPC layer or the UI toolkit. It calls
// through three narrow handles: Engine (keystream and cursor sync into
// the embedded engine), Editor (application operations of the host),
// and host.TextWidget (the bound text control). Each key event is
// dispatched exactly once; HandleKey reports the path taken so the
// host can decide whether its default handling may still run.
package router
