// Package key defines host keyboard events and their translation into the
// engine's key notation.
//
// A host front end constructs Event values from its native input events and
// hands them to the input router. EngineString renders an event in the
// notation the engine's input call understands ("a", "<Esc>", "<C-r>"),
// applying the terminal conventions the bridge relies on (Ctrl-[ is Escape,
// space is sent literally). ParseNotation goes the other way and is used by
// keymap files and macro replay.
package key
