// Package runtime carries the engine-side initialization script and the
// filetype mapping for host documents.
//
// The script installs the _G.godot_neovim namespace inside the engine.
// An external copy on the engine's runtimepath is preferred when
// present; the embedded source here is the fallback injected over rpc.
package runtime
