package nvim

import (
	"context"

	"gdnvim/internal/nvim/runtime"
)

// SendKeys feeds keys through the engine as if typed, with remapping
// off. Unlike Input this goes through feedkeys, which processes
// termcodes in the middle of a pending command.
func (c *Client) SendKeys(ctx context.Context, keys string) error {
	_, err := c.ExecLua(ctx, runtime.LuaCall(runtime.FnSendKeys), keys)
	return err
}

// JoinNoSpace joins count lines without inserting a space.
func (c *Client) JoinNoSpace(ctx context.Context) error {
	_, err := c.ExecLua(ctx, runtime.LuaCall(runtime.FnJoinNoSpace))
	return err
}
