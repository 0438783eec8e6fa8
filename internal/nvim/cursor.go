package nvim

import (
	"context"

	"gdnvim/internal/nvim/rpc"
	"gdnvim/internal/nvim/runtime"
)

// Cursor returns the current window's cursor, Row 1-based and Col a
// 0-based byte offset.
func (c *Client) Cursor(ctx context.Context) (Position, error) {
	res, err := c.call(ctx, "nvim_win_get_cursor", 0)
	if err != nil {
		return Position{}, err
	}
	arr, ok := rpc.AsSlice(res)
	if !ok || len(arr) < 2 {
		return Position{}, ErrBadReply
	}
	var p Position
	p.Row, _ = rpc.AsInt(arr[0])
	p.Col, _ = rpc.AsInt(arr[1])
	return p, nil
}

// SetCursor moves the current window's cursor.
func (c *Client) SetCursor(ctx context.Context, pos Position) error {
	_, err := c.call(ctx, "nvim_win_set_cursor", 0, []any{pos.Row, pos.Col})
	return err
}

// SetVisualSelection enters visual mode with the given anchor and
// cursor in one engine round trip, so mode entry and movement cannot
// interleave with keys. Returns the resulting mode string.
func (c *Client) SetVisualSelection(ctx context.Context, from, to Position) (string, error) {
	res, err := c.ExecLua(ctx, runtime.LuaCall(runtime.FnSetVisualSelection),
		from.Row, from.Col, to.Row, to.Col)
	if err != nil {
		return "", err
	}
	m, ok := rpc.AsMap(res)
	if !ok {
		return "", ErrBadReply
	}
	mode, _ := rpc.AsString(m["mode"])
	return mode, nil
}

// VisualStart returns the anchor of the active visual selection via
// getpos("v"). getpos columns are 1-based; the result is normalized to
// the 0-based byte convention.
func (c *Client) VisualStart(ctx context.Context) (Position, error) {
	res, err := c.CallFunction(ctx, "getpos", "v")
	if err != nil {
		return Position{}, err
	}
	arr, ok := rpc.AsSlice(res)
	if !ok || len(arr) < 3 {
		return Position{}, ErrBadReply
	}
	var p Position
	p.Row, _ = rpc.AsInt(arr[1])
	col, _ := rpc.AsInt(arr[2])
	p.Col = col - 1
	if p.Col < 0 {
		p.Col = 0
	}
	return p, nil
}
