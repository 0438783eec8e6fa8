package nvim

import (
	"context"
	"fmt"

	"gdnvim/internal/nvim/process"
	"gdnvim/internal/nvim/rpc"
	"gdnvim/internal/nvim/runtime"
)

// Grid dimensions passed to nvim_ui_attach. The bridge never renders
// the grid, so any size works; resizes later track the host's visible
// line count so viewport events stay meaningful.
const (
	AttachWidth  = 80
	AttachHeight = 24
)

// Oldest engine the bridge is known to work with. Older engines get a
// warning and a best-effort session, not a refusal.
const (
	MinVersionMajor = 0
	MinVersionMinor = 9
	MinVersionPatch = 0
)

// HandshakeResult reports what session setup learned.
type HandshakeResult struct {
	Channel   int64
	Version   process.Version
	VersionOK bool
}

// Handshake brings a fresh session up: learns the channel id and
// engine version, disables swap prompts, injects the init script, and
// attaches the UI so redraw events start flowing.
func (c *Client) Handshake(ctx context.Context) (HandshakeResult, error) {
	var res HandshakeResult

	channel, meta, err := c.APIInfo(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: api info: %v", ErrHandshake, err)
	}
	c.channel = channel
	res.Channel = channel
	res.Version = apiVersion(meta)
	res.VersionOK = res.Version.AtLeast(MinVersionMajor, MinVersionMinor, MinVersionPatch)

	// A headless embed session must never sit on a swap prompt; the
	// host cannot answer it. -n already disables swap files, this
	// covers files opened by engine-side scripts anyway.
	for _, cmd := range []string{
		"set noswapfile shortmess+=A",
		"autocmd SwapExists * let v:swapchoice = 'e'",
	} {
		if _, err := c.callExtended(ctx, "nvim_command", cmd); err != nil {
			return res, fmt.Errorf("%w: %q: %v", ErrHandshake, cmd, err)
		}
	}

	if _, err := c.ExecLuaExtended(ctx, runtime.BootstrapScript, channel); err != nil {
		return res, fmt.Errorf("%w: init script: %v", ErrHandshake, err)
	}

	if err := c.UIAttach(ctx, AttachWidth, AttachHeight); err != nil {
		return res, fmt.Errorf("%w: ui attach: %v", ErrHandshake, err)
	}

	return res, nil
}

func apiVersion(meta map[string]any) process.Version {
	var v process.Version
	raw, ok := rpc.AsMap(meta["version"])
	if !ok {
		return v
	}
	if n, ok := rpc.AsInt(raw["major"]); ok {
		v.Major = int(n)
	}
	if n, ok := rpc.AsInt(raw["minor"]); ok {
		v.Minor = int(n)
	}
	if n, ok := rpc.AsInt(raw["patch"]); ok {
		v.Patch = int(n)
	}
	v.Raw = fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	return v
}
