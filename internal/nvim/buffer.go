package nvim

import (
	"context"

	"gdnvim/internal/nvim/rpc"
	"gdnvim/internal/nvim/runtime"
)

// SwitchResult is what the switch_to_buffer helper reports: the buffer
// now current, its change counter, whether it was created on this
// visit, whether line events are attached, and the restored cursor.
type SwitchResult struct {
	Buf      rpc.BufferID
	Tick     int64
	IsNew    bool
	Attached bool
	Cursor   Position
}

// ReloadResult is what reload_buffer reports after re-reading the file
// from disk. The reload can recreate the buffer, so attachment status
// comes back too.
type ReloadResult struct {
	Lines    []string
	Tick     int64
	Attached bool
	Cursor   Position
}

// RegisterBuffer replaces a buffer's content and clears its undo
// history, so the upload is not undoable. Returns the change counter
// after the write; the caller records it to absorb the upload's echo.
func (c *Client) RegisterBuffer(ctx context.Context, buf rpc.BufferID, lines []string) (int64, error) {
	res, err := c.ExecLuaExtended(ctx, runtime.LuaCall(runtime.FnBufferRegister), int64(buf), lineArgs(lines))
	if err != nil {
		return 0, err
	}
	tick, ok := rpc.AsInt(res)
	if !ok {
		return 0, ErrBadReply
	}
	return tick, nil
}

// UpdateBuffer replaces a buffer's content keeping undo history, so
// 'u' after the update steps back through host-side edits.
func (c *Client) UpdateBuffer(ctx context.Context, buf rpc.BufferID, lines []string) (int64, error) {
	res, err := c.ExecLua(ctx, runtime.LuaCall(runtime.FnBufferUpdate), int64(buf), lineArgs(lines))
	if err != nil {
		return 0, err
	}
	tick, ok := rpc.AsInt(res)
	if !ok {
		return 0, ErrBadReply
	}
	return tick, nil
}

// SwitchToBuffer makes the buffer backing path current, creating and
// loading it on first visit. A non-nil lines uploads the host's
// content through buffer_register.
func (c *Client) SwitchToBuffer(ctx context.Context, path string, lines []string) (SwitchResult, error) {
	args := []any{path}
	if lines != nil {
		args = append(args, lineArgs(lines))
	}
	res, err := c.ExecLuaExtended(ctx, runtime.LuaCall(runtime.FnSwitchToBuffer), args...)
	if err != nil {
		return SwitchResult{}, err
	}
	m, ok := rpc.AsMap(res)
	if !ok {
		return SwitchResult{}, ErrBadReply
	}
	var out SwitchResult
	n, ok := rpc.AsInt(m["bufnr"])
	if !ok {
		return SwitchResult{}, ErrBadReply
	}
	out.Buf = rpc.BufferID(n)
	out.Tick, _ = rpc.AsInt(m["tick"])
	out.IsNew, _ = rpc.AsBool(m["is_new"])
	out.Attached, _ = rpc.AsBool(m["attached"])
	out.Cursor = decodeCursor(m["cursor"])
	return out, nil
}

// ReloadBuffer re-reads the current buffer from disk, dropping any
// engine-side changes. Backs the :e! command.
func (c *Client) ReloadBuffer(ctx context.Context) (ReloadResult, error) {
	res, err := c.ExecLuaExtended(ctx, runtime.LuaCall(runtime.FnReloadBuffer))
	if err != nil {
		return ReloadResult{}, err
	}
	m, ok := rpc.AsMap(res)
	if !ok {
		return ReloadResult{}, ErrBadReply
	}
	var out ReloadResult
	out.Lines, _ = rpc.AsStringSlice(m["lines"])
	out.Tick, _ = rpc.AsInt(m["tick"])
	out.Attached, _ = rpc.AsBool(m["attached"])
	out.Cursor = decodeCursor(m["cursor"])
	return out, nil
}

// BufferModified reports the engine-side modified flag for a buffer.
func (c *Client) BufferModified(ctx context.Context, buf rpc.BufferID) (bool, error) {
	res, err := c.CallFunction(ctx, "getbufvar", int64(buf), "&modified")
	if err != nil {
		return false, err
	}
	n, _ := rpc.AsInt(res)
	return n != 0, nil
}

// WipeoutBuffer discards a buffer outright. Used by the tab-close
// handshake once the host widget is gone.
func (c *Client) WipeoutBuffer(ctx context.Context, buf rpc.BufferID) error {
	_, err := c.ExecLua(ctx, "vim.cmd('silent! bwipeout! ' .. (...))", int64(buf))
	return err
}

// lineArgs keeps an empty slice encoding as an array, not nil. The
// Lua side iterates the table; nil would arrive as vim.NIL.
func lineArgs(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

func decodeCursor(v any) Position {
	arr, ok := rpc.AsSlice(v)
	if !ok || len(arr) < 2 {
		return Position{Row: 1}
	}
	var p Position
	p.Row, _ = rpc.AsInt(arr[0])
	p.Col, _ = rpc.AsInt(arr[1])
	return p
}
