package runtime

// Notification methods relayed from the init script's autocmds.
const (
	// NotifyCursor carries [lnum, col] from CursorMoved, with lnum
	// 1-based and col a 0-based byte offset. Byte positions survive
	// tabs where grid columns do not.
	NotifyCursor = "godot_neovim_cursor"

	// NotifyBufEnter carries [bufnr, name] for cross-side tab sync.
	NotifyBufEnter = "godot_neovim_buf_enter"

	// NotifyDebug carries a single message string for verbose logging.
	NotifyDebug = "godot_neovim_debug"
)

// Requests the engine's clipboard provider makes back to the host.
const (
	ReqClipboardSet = "gnvim_clipboard_set"
	ReqClipboardGet = "gnvim_clipboard_get"
)

// BootstrapScript is the engine init source, executed once per session
// with the rpc channel id as its only argument.
const BootstrapScript = bootstrapLua

const bootstrapLua = `
local chan = ...

-- Prefer an external copy on the runtimepath when one is installed.
local ok, external = pcall(require, "godot_neovim")
if ok and type(external) == "table" and type(external.setup) == "function" then
    return external.setup(chan)
end

_G.godot_neovim = {}
local M = _G.godot_neovim
M.channel = chan

-- Register buffer with initial content. Drops undo history so the
-- upload is not undoable into an empty buffer.
function M.buffer_register(bufnr, lines)
    if bufnr == 0 then
        bufnr = vim.api.nvim_get_current_buf()
    end
    local saved_ul = vim.bo[bufnr].undolevels
    vim.bo[bufnr].undolevels = -1
    vim.api.nvim_buf_set_lines(bufnr, 0, -1, false, lines)
    vim.bo[bufnr].undolevels = saved_ul
    vim.bo[bufnr].modified = false
    return vim.api.nvim_buf_get_changedtick(bufnr)
end

-- Update buffer content, keeping undo history intact for 'u'.
function M.buffer_update(bufnr, lines)
    if bufnr == 0 then
        bufnr = vim.api.nvim_get_current_buf()
    end
    vim.api.nvim_buf_set_lines(bufnr, 0, -1, false, lines)
    return vim.api.nvim_buf_get_changedtick(bufnr)
end

-- Switch to the buffer backing a host document, creating it on first
-- visit. lines, when given, replaces the content via buffer_register.
function M.switch_to_buffer(path, lines)
    local bufnr = vim.fn.bufnr(path)
    local is_new = bufnr == -1
    if is_new then
        bufnr = vim.fn.bufadd(path)
        vim.fn.bufload(bufnr)
    end
    vim.api.nvim_set_current_buf(bufnr)
    if lines ~= nil and lines ~= vim.NIL then
        M.buffer_register(bufnr, lines)
    end
    local attached = vim.api.nvim_buf_attach(bufnr, false, {})
    return {
        bufnr = bufnr,
        tick = vim.api.nvim_buf_get_changedtick(bufnr),
        is_new = is_new,
        attached = attached,
        cursor = vim.api.nvim_win_get_cursor(0),
    }
end

-- Reload the current buffer from disk, dropping local changes. The
-- reload can recreate the buffer, so the caller gets a fresh attach
-- status along with the new content.
function M.reload_buffer()
    vim.cmd("silent! edit!")
    local bufnr = vim.api.nvim_get_current_buf()
    local attached = vim.api.nvim_buf_attach(bufnr, false, {})
    return {
        lines = vim.api.nvim_buf_get_lines(bufnr, 0, -1, false),
        tick = vim.api.nvim_buf_get_changedtick(bufnr),
        attached = attached,
        cursor = vim.api.nvim_win_get_cursor(0),
    }
end

-- Set a visual selection atomically so cursor movement and mode entry
-- land in the right order.
function M.set_visual_selection(from_l, from_c, to_l, to_c)
    local mode = vim.api.nvim_get_mode().mode
    if mode:find("^[vV\22]") then
        vim.cmd("normal! \27")
    end
    vim.api.nvim_win_set_cursor(0, { from_l, from_c })
    vim.cmd("normal! v")
    vim.api.nvim_win_set_cursor(0, { to_l, to_c })
    return { mode = vim.api.nvim_get_mode().mode }
end

-- Feed keys through the engine as if typed, without remapping.
function M.send_keys(keys)
    local termcodes = vim.api.nvim_replace_termcodes(keys, true, false, true)
    vim.api.nvim_feedkeys(termcodes, "n", false)
end

-- Join lines without inserting a space.
function M.join_no_space()
    vim.cmd("normal! " .. vim.v.count1 .. "gJ")
end

function M.debug(msg)
    vim.rpcnotify(chan, "godot_neovim_debug", tostring(msg))
end

-- Clipboard registers round-trip through the host so they work in a
-- headless engine with no provider of its own.
vim.g.clipboard = {
    name = "host",
    copy = {
        ["+"] = function(lines, regtype)
            vim.rpcrequest(chan, "gnvim_clipboard_set", lines, regtype, "+")
        end,
        ["*"] = function(lines, regtype)
            vim.rpcrequest(chan, "gnvim_clipboard_set", lines, regtype, "*")
        end,
    },
    paste = {
        ["+"] = function()
            return vim.rpcrequest(chan, "gnvim_clipboard_get", "+")
        end,
        ["*"] = function()
            return vim.rpcrequest(chan, "gnvim_clipboard_get", "*")
        end,
    },
    cache_enabled = false,
}

local group = vim.api.nvim_create_augroup("godot_neovim", { clear = true })

vim.api.nvim_create_autocmd({ "CursorMoved", "CursorMovedI" }, {
    group = group,
    callback = function()
        local pos = vim.api.nvim_win_get_cursor(0)
        vim.rpcnotify(chan, "godot_neovim_cursor", pos[1], pos[2])
    end,
})

vim.api.nvim_create_autocmd("BufEnter", {
    group = group,
    callback = function(args)
        vim.rpcnotify(chan, "godot_neovim_buf_enter", args.buf, vim.api.nvim_buf_get_name(args.buf))
    end,
})

return true
`

// Namespace functions installed by the script.
const (
	FnBufferRegister     = "buffer_register"
	FnBufferUpdate       = "buffer_update"
	FnSwitchToBuffer     = "switch_to_buffer"
	FnReloadBuffer       = "reload_buffer"
	FnSetVisualSelection = "set_visual_selection"
	FnSendKeys           = "send_keys"
	FnJoinNoSpace        = "join_no_space"
)

// LuaCall builds an nvim_exec_lua source string that invokes a
// namespace function with the request's arguments.
func LuaCall(fn string) string {
	return "return _G.godot_neovim." + fn + "(...)"
}
