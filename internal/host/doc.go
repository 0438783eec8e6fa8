// Package host declares the capability surfaces the bridge borrows from
// the embedding editor: the text widget it mirrors, the editor-level
// actions it can invoke, and the dialogs it can raise. The editor
// implements these interfaces; the bridge and input router only ever
// call through them, so nothing in this module depends on a concrete
// UI toolkit.
package host
