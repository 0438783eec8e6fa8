package nvim

import (
	"errors"
	"fmt"

	"gdnvim/internal/nvim/rpc"
	"gdnvim/internal/nvim/runtime"
)

// BufEventKind discriminates buffer-change notifications.
type BufEventKind int

const (
	// BufEventLines is a line replacement in [First, Last).
	BufEventLines BufEventKind = iota
	// BufEventChangedTick is a counter bump with no line change.
	BufEventChangedTick
	// BufEventDetach reports the engine dropped the subscription.
	BufEventDetach
)

// BufEvent is one entry in the buffer-event queue. Lines events carry
// a replacement of [First, Last) by Lines; Last is -1 for
// end-of-buffer. ChangedTick events carry only Tick. Detach events
// carry only Buf.
type BufEvent struct {
	Kind  BufEventKind
	Buf   rpc.BufferID
	Tick  int64
	First int64
	Last  int64
	Lines []string
	More  bool
}

// Clipboard serves the engine's register provider. Get returns the
// lines and register type ("v", "V" or block) for a register; Set
// stores them. Implementations run on rpc handler goroutines.
type Clipboard interface {
	Get(reg string) (lines []string, regtype string, err error)
	Set(lines []string, regtype, reg string) error
}

// SetClipboard installs the provider backing the engine's + and *
// registers. Without one, register access fails engine-side.
func (c *Client) SetClipboard(cb Clipboard) { c.clipboard = cb }

func (c *Client) installHandlers() {
	c.session.OnNotification("redraw", func(_ string, params []any) {
		c.handleRedraw(params)
	})
	c.session.OnNotification("nvim_buf_lines_event", func(_ string, params []any) {
		c.handleBufLines(params)
	})
	c.session.OnNotification("nvim_buf_changedtick_event", func(_ string, params []any) {
		c.handleChangedTick(params)
	})
	c.session.OnNotification("nvim_buf_detach_event", func(_ string, params []any) {
		c.handleDetach(params)
	})
	c.session.OnNotification(runtime.NotifyCursor, func(_ string, params []any) {
		c.handleCursorRelay(params)
	})
	c.session.OnNotification(runtime.NotifyBufEnter, func(_ string, params []any) {
		c.handleBufEnter(params)
	})
	c.session.OnNotification(runtime.NotifyDebug, func(_ string, params []any) {
		c.handleDebug(params)
	})
	c.session.OnRequest(c.handleRequest)
}

// handleRedraw walks a redraw batch. Each entry is [name, payload...]
// with one payload array per occurrence; payloads apply in order and
// flush commits the batch.
func (c *Client) handleRedraw(params []any) {
	for _, entry := range params {
		ev, ok := rpc.AsSlice(entry)
		if !ok || len(ev) == 0 {
			continue
		}
		name, ok := rpc.AsString(ev[0])
		if !ok {
			continue
		}
		switch name {
		case "mode_change":
			for _, raw := range ev[1:] {
				p, ok := rpc.AsSlice(raw)
				if !ok || len(p) < 1 {
					continue
				}
				if mode, ok := rpc.AsString(p[0]); ok {
					c.state.setMode(mode)
				}
			}
		case "grid_cursor_goto":
			for _, raw := range ev[1:] {
				p, ok := rpc.AsSlice(raw)
				if !ok || len(p) < 3 {
					continue
				}
				row, _ := rpc.AsInt(p[1])
				col, _ := rpc.AsInt(p[2])
				c.state.setGridCursor(row, col)
			}
		case "win_viewport":
			for _, raw := range ev[1:] {
				p, ok := rpc.AsSlice(raw)
				if !ok || len(p) < 6 {
					continue
				}
				var v Viewport
				v.Topline, _ = rpc.AsInt(p[2])
				v.Botline, _ = rpc.AsInt(p[3])
				v.Curline, _ = rpc.AsInt(p[4])
				v.Curcol, _ = rpc.AsInt(p[5])
				c.state.setViewport(v)
			}
		case "flush":
			c.state.flagFlush()
		default:
			c.state.countUnknownRedraw()
		}
	}
}

func (c *Client) handleBufLines(params []any) {
	if len(params) < 6 {
		return
	}
	ev := BufEvent{Kind: BufEventLines}
	if n, ok := rpc.AsInt(params[0]); ok {
		ev.Buf = rpc.BufferID(n)
	}
	ev.Tick, _ = rpc.AsInt(params[1])
	ev.First, _ = rpc.AsInt(params[2])
	ev.Last, _ = rpc.AsInt(params[3])
	ev.Lines, _ = rpc.AsStringSlice(params[4])
	ev.More, _ = rpc.AsBool(params[5])
	c.state.pushBufEvent(ev)
}

func (c *Client) handleChangedTick(params []any) {
	if len(params) < 2 {
		return
	}
	ev := BufEvent{Kind: BufEventChangedTick}
	if n, ok := rpc.AsInt(params[0]); ok {
		ev.Buf = rpc.BufferID(n)
	}
	ev.Tick, _ = rpc.AsInt(params[1])
	c.state.pushBufEvent(ev)
}

func (c *Client) handleDetach(params []any) {
	if len(params) < 1 {
		return
	}
	ev := BufEvent{Kind: BufEventDetach}
	if n, ok := rpc.AsInt(params[0]); ok {
		ev.Buf = rpc.BufferID(n)
	}
	c.state.pushBufEvent(ev)
}

func (c *Client) handleCursorRelay(params []any) {
	if len(params) < 2 {
		return
	}
	row, ok := rpc.AsInt(params[0])
	if !ok {
		return
	}
	col, _ := rpc.AsInt(params[1])
	c.state.setActualCursor(row, col)
}

// handleBufEnter runs the registered callback on the read loop; the
// callback must only queue.
func (c *Client) handleBufEnter(params []any) {
	if c.onBufEnter == nil || len(params) < 2 {
		return
	}
	n, ok := rpc.AsInt(params[0])
	if !ok {
		return
	}
	name, _ := rpc.AsString(params[1])
	c.onBufEnter(rpc.BufferID(n), name)
}

func (c *Client) handleDebug(params []any) {
	if len(params) < 1 {
		return
	}
	if msg, ok := rpc.AsString(params[0]); ok {
		c.state.pushDebug(msg)
	}
}

var errNoClipboard = errors.New("no clipboard provider")

func (c *Client) handleRequest(method string, params []any) (any, error) {
	switch method {
	case runtime.ReqClipboardGet:
		if c.clipboard == nil {
			return nil, errNoClipboard
		}
		if len(params) < 1 {
			return nil, fmt.Errorf("%s: missing register", method)
		}
		reg, _ := rpc.AsString(params[0])
		lines, regtype, err := c.clipboard.Get(reg)
		if err != nil {
			return nil, err
		}
		return []any{lines, regtype}, nil
	case runtime.ReqClipboardSet:
		if c.clipboard == nil {
			return nil, errNoClipboard
		}
		if len(params) < 3 {
			return nil, fmt.Errorf("%s: short params", method)
		}
		lines, _ := rpc.AsStringSlice(params[0])
		regtype, _ := rpc.AsString(params[1])
		reg, _ := rpc.AsString(params[2])
		return nil, c.clipboard.Set(lines, regtype, reg)
	}
	return nil, fmt.Errorf("unhandled request %q", method)
}
