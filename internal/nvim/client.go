package nvim

import (
	"context"
	"time"

	"gdnvim/internal/nvim/rpc"
)

// Per-call budgets. Interactive requests ride the frame thread and
// must fail fast; extended covers handshake and file-touching paths.
const (
	DefaultTimeout  = 100 * time.Millisecond
	ExtendedTimeout = 500 * time.Millisecond
)

// Config carries the client's per-call timeouts. Zero values take the
// defaults.
type Config struct {
	Timeout         time.Duration
	ExtendedTimeout time.Duration
}

// Client wraps an rpc session with typed engine calls and owns the
// shared State the notification handler writes into.
type Client struct {
	session *rpc.Session
	state   *State
	cfg     Config

	channel    int64
	onBufEnter func(buf rpc.BufferID, name string)
	clipboard  Clipboard
}

// NewClient wires a client onto a session and installs the
// notification and request handlers. The session must not have been
// started yet; Start it after NewClient returns.
func NewClient(session *rpc.Session, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ExtendedTimeout <= 0 {
		cfg.ExtendedTimeout = ExtendedTimeout
	}
	c := &Client{
		session: session,
		state:   NewState(),
		cfg:     cfg,
	}
	c.installHandlers()
	return c
}

// Session exposes the underlying rpc session.
func (c *Client) Session() *rpc.Session { return c.session }

// State exposes the shared engine-reported state.
func (c *Client) State() *State { return c.state }

// Channel returns the rpc channel id learned during the handshake.
func (c *Client) Channel() int64 { return c.channel }

// Connected reports whether the session is still up.
func (c *Client) Connected() bool { return !c.session.IsClosed() }

// Close shuts the session down.
func (c *Client) Close() error { return c.session.Close() }

// OnBufEnter registers the callback for the engine-side buffer-enter
// relay, used to keep host tabs in step with engine-driven switches.
func (c *Client) OnBufEnter(fn func(buf rpc.BufferID, name string)) {
	c.onBufEnter = fn
}

func (c *Client) call(ctx context.Context, method string, params ...any) (any, error) {
	return c.callTimeout(ctx, c.cfg.Timeout, method, params...)
}

func (c *Client) callExtended(ctx context.Context, method string, params ...any) (any, error) {
	return c.callTimeout(ctx, c.cfg.ExtendedTimeout, method, params...)
}

func (c *Client) callTimeout(ctx context.Context, budget time.Duration, method string, params ...any) (any, error) {
	if c.session.IsClosed() {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return c.session.Call(ctx, method, params...)
}

// UIAttach attaches a linegrid UI. The bridge never renders the grid;
// attaching is what turns on mode_change and the other redraw events.
func (c *Client) UIAttach(ctx context.Context, width, height int) error {
	_, err := c.callExtended(ctx, "nvim_ui_attach", width, height, map[string]any{
		"rgb":           true,
		"ext_linegrid":  true,
		"ext_multigrid": true,
	})
	return err
}

// UITryResize asks the engine to match the host's visible line count.
// Best effort; callers ignore the error.
func (c *Client) UITryResize(ctx context.Context, width, height int) error {
	_, err := c.call(ctx, "nvim_ui_try_resize", width, height)
	return err
}

// Input queues keys through the engine's low-level input buffer.
// Returns the number of bytes consumed.
func (c *Client) Input(ctx context.Context, keys string) (int64, error) {
	res, err := c.call(ctx, "nvim_input", keys)
	if err != nil {
		return 0, err
	}
	n, _ := rpc.AsInt(res)
	return n, nil
}

// Command runs an ex command.
func (c *Client) Command(ctx context.Context, cmd string) error {
	_, err := c.call(ctx, "nvim_command", cmd)
	return err
}

// ExecLua runs a chunk on the engine and returns its result.
func (c *Client) ExecLua(ctx context.Context, code string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return c.call(ctx, "nvim_exec_lua", code, args)
}

// ExecLuaExtended is ExecLua with the extended budget, for helpers
// that can hit the filesystem.
func (c *Client) ExecLuaExtended(ctx context.Context, code string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return c.callExtended(ctx, "nvim_exec_lua", code, args)
}

// APIInfo returns the session's channel id and the engine's metadata
// dictionary.
func (c *Client) APIInfo(ctx context.Context) (int64, map[string]any, error) {
	res, err := c.callExtended(ctx, "nvim_get_api_info")
	if err != nil {
		return 0, nil, err
	}
	arr, ok := rpc.AsSlice(res)
	if !ok || len(arr) != 2 {
		return 0, nil, ErrBadReply
	}
	channel, ok := rpc.AsInt(arr[0])
	if !ok {
		return 0, nil, ErrBadReply
	}
	meta, _ := rpc.AsMap(arr[1])
	return channel, meta, nil
}

// ModeInfo is the engine's answer to nvim_get_mode.
type ModeInfo struct {
	Mode     string
	Blocking bool
}

// Mode asks the engine for its current mode. Used to re-ground after
// recovery; steady-state mode tracking rides the redraw stream.
func (c *Client) Mode(ctx context.Context) (ModeInfo, error) {
	res, err := c.call(ctx, "nvim_get_mode")
	if err != nil {
		return ModeInfo{}, err
	}
	m, ok := rpc.AsMap(res)
	if !ok {
		return ModeInfo{}, ErrBadReply
	}
	var info ModeInfo
	info.Mode, _ = rpc.AsString(m["mode"])
	info.Blocking, _ = rpc.AsBool(m["blocking"])
	return info, nil
}

// CurrentBuf returns the handle of the engine's current buffer.
func (c *Client) CurrentBuf(ctx context.Context) (rpc.BufferID, error) {
	res, err := c.call(ctx, "nvim_get_current_buf")
	if err != nil {
		return 0, err
	}
	n, ok := rpc.AsInt(res)
	if !ok {
		return 0, ErrBadReply
	}
	return rpc.BufferID(n), nil
}

// CurrentWin returns the handle of the engine's current window.
func (c *Client) CurrentWin(ctx context.Context) (rpc.WindowID, error) {
	res, err := c.call(ctx, "nvim_get_current_win")
	if err != nil {
		return 0, err
	}
	n, ok := rpc.AsInt(res)
	if !ok {
		return 0, ErrBadReply
	}
	return rpc.WindowID(n), nil
}

// BufLines fetches [first, last) from a buffer, 0-based, last -1 for
// end of buffer.
func (c *Client) BufLines(ctx context.Context, buf rpc.BufferID, first, last int64) ([]string, error) {
	res, err := c.callExtended(ctx, "nvim_buf_get_lines", buf, first, last, false)
	if err != nil {
		return nil, err
	}
	lines, ok := rpc.AsStringSlice(res)
	if !ok {
		return nil, ErrBadReply
	}
	return lines, nil
}

// BufLineCount returns the buffer's line count.
func (c *Client) BufLineCount(ctx context.Context, buf rpc.BufferID) (int64, error) {
	res, err := c.call(ctx, "nvim_buf_line_count", buf)
	if err != nil {
		return 0, err
	}
	n, ok := rpc.AsInt(res)
	if !ok {
		return 0, ErrBadReply
	}
	return n, nil
}

// BufAttach subscribes to line events for a buffer. send_buffer stays
// off; the host already holds the content and only wants deltas.
func (c *Client) BufAttach(ctx context.Context, buf rpc.BufferID) (bool, error) {
	res, err := c.call(ctx, "nvim_buf_attach", buf, false, map[string]any{})
	if err != nil {
		return false, err
	}
	ok, _ := rpc.AsBool(res)
	return ok, nil
}

// CallFunction invokes a vimscript function.
func (c *Client) CallFunction(ctx context.Context, fn string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return c.call(ctx, "nvim_call_function", fn, args)
}

// OptionValue reads a global option.
func (c *Client) OptionValue(ctx context.Context, name string) (any, error) {
	return c.call(ctx, "nvim_get_option_value", name, map[string]any{})
}
