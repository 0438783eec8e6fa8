package bridge

import (
	"context"
	"fmt"

	"gdnvim/internal/nvim/process"
	"gdnvim/internal/nvim/rpc"
)

// SymbolResolver looks up definitions and documentation through the
// host's language server. Line and col are widget coordinates.
type SymbolResolver interface {
	// Definition resolves the symbol at the caret to a file position.
	// An empty file means no definition was found.
	Definition(ctx context.Context, path string, line, col int) (file string, defLine, defCol int, err error)

	// Documentation resolves the symbol at the caret to a help topic
	// for the host's documentation viewer.
	Documentation(ctx context.Context, path string, line, col int, word string) (topic string, err error)
}

// The editor surface the router drives. Most operations pass straight
// through to the host; the tab-closing family runs the engine-side
// close handshake first, and the disk reload keeps both sides in step.

func (b *Bridge) OpenFile(path string) { b.actions.OpenFile(path) }

func (b *Bridge) OpenURL(url string) { b.actions.OpenURL(url) }

func (b *Bridge) QuickOpen() { b.actions.QuickOpen() }

func (b *Bridge) Save() { b.actions.Save() }

func (b *Bridge) SaveAll() { b.actions.SaveAll() }

func (b *Bridge) NextTab() { b.actions.NextTab() }

func (b *Bridge) PrevTab() { b.actions.PrevTab() }

func (b *Bridge) Tabs() []string { return b.actions.Tabs() }

func (b *Bridge) CurrentFile() string { return b.actions.CurrentFile() }

func (b *Bridge) ShowHelp(topic string) { b.actions.ShowHelp(topic) }

func (b *Bridge) Echo(msg string) { b.actions.Echo(msg) }

func (b *Bridge) Print(msg string) { b.actions.Print(msg) }

func (b *Bridge) CloseTab(force bool) {
	if err := b.CloseCurrent(); err != nil {
		b.log.Warn("close handshake failed: %v", err)
	}
	b.actions.CloseTab(force)
}

func (b *Bridge) CloseAllTabs(force bool) {
	if err := b.CloseCurrent(); err != nil {
		b.log.Warn("close handshake failed: %v", err)
	}
	b.actions.CloseAllTabs(force)
}

// ReloadFromDisk reloads on both sides: the host refreshes its view of
// the file, then the engine re-reads it and its content lands in the
// widget as the authoritative copy.
func (b *Bridge) ReloadFromDisk() {
	b.tracker.BeginApply()
	b.actions.ReloadFromDisk()
	b.tracker.EndApply()
	if err := b.ReloadCurrent(); err != nil {
		b.log.Warn("engine reload failed: %v", err)
	}
}

// GotoDefinition resolves the symbol at the caret. A same-file hit
// moves the caret directly; a cross-file hit opens the file and defers
// the caret move until that file is bound.
func (b *Bridge) GotoDefinition() {
	if b.resolver == nil {
		b.actions.Echo("No language server available")
		return
	}
	line, col := b.widget.Caret()
	file, defLine, defCol, err := b.resolver.Definition(b.ctx, b.path, line, col)
	if err != nil {
		b.log.Debug("definition lookup failed: %v", err)
		b.actions.Echo("No definition found")
		return
	}
	if file == "" {
		b.actions.Echo("No definition found")
		return
	}
	if file == b.path {
		b.widget.SetCaret(defLine, defCol)
		b.PushCursor()
		return
	}
	b.pendingJump = &defJump{path: file, line: defLine, col: defCol}
	b.actions.OpenFile(file)
}

// ShowDocumentation opens help for word. Uppercase-initial words are
// class names and go straight to the host's class help; everything
// else resolves through the language server's hover.
func (b *Bridge) ShowDocumentation(word string) {
	if word == "" {
		return
	}
	if word[0] >= 'A' && word[0] <= 'Z' {
		b.actions.ShowHelp(word)
		return
	}
	if b.resolver == nil {
		b.actions.Echo("No documentation for " + word)
		return
	}
	line, col := b.widget.Caret()
	topic, err := b.resolver.Documentation(b.ctx, b.path, line, col, word)
	if err != nil || topic == "" {
		if err != nil {
			b.log.Debug("hover lookup failed: %v", err)
		}
		b.actions.Echo("No documentation for " + word)
		return
	}
	b.actions.ShowHelp(topic)
}

// VersionLine returns the host and engine version string shown by
// :version.
func (b *Bridge) VersionLine() string {
	if b.engineVersion == (process.Version{}) {
		return "gdnvim " + b.cfg.HostVersion
	}
	return fmt.Sprintf("gdnvim %s (nvim %s)", b.cfg.HostVersion, b.engineVersion)
}

// OptionValue reads an engine option, formatted the way :set prints
// values: booleans as 1/0, everything else verbatim.
func (b *Bridge) OptionValue(name string) (string, error) {
	c := b.engine()
	if c == nil {
		return "", ErrNotConnected
	}
	v, err := c.OptionValue(b.ctx, name)
	if err != nil {
		b.noteRPC(err)
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	case string:
		return t, nil
	default:
		return fmt.Sprint(t), nil
	}
}

// RegisterContents reads an engine register for the :registers
// listing.
func (b *Bridge) RegisterContents(name string) (string, error) {
	c := b.engine()
	if c == nil {
		return "", ErrNotConnected
	}
	v, err := c.CallFunction(b.ctx, "getreg", name)
	if err != nil {
		b.noteRPC(err)
		return "", err
	}
	s, _ := rpc.AsString(v)
	return s, nil
}

// JoinNoSpace joins lines without inserting a space; the engine helper
// honors any count already sent through the key stream.
func (b *Bridge) JoinNoSpace() {
	c := b.engine()
	if c == nil {
		return
	}
	if err := c.JoinNoSpace(b.ctx); err != nil {
		b.noteRPC(err)
	}
}
