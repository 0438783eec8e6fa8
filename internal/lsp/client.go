// Package lsp is a minimal client for the host editor's language
// server: definition and hover lookups over a TCP connection with
// Content-Length framed JSON-RPC.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"gdnvim/internal/logger"
)

// resPrefix is the editor's resource scheme. Paths under it resolve
// against the project root.
const resPrefix = "res://"

// Config carries the client settings.
type Config struct {
	// Addr is the language server's TCP address.
	Addr string

	// Root is the project root directory. res:// paths resolve under
	// it and it becomes the workspace root sent on initialize.
	Root string

	// DialTimeout bounds the TCP connect.
	DialTimeout time.Duration

	// CallTimeout bounds each request. Lookups run on the host's
	// frame thread, so the budget stays short.
	CallTimeout time.Duration

	Logger *logger.Logger
}

// DefaultConfig returns the client defaults: the editor's language
// server port on loopback and short lookup budgets.
func DefaultConfig() Config {
	return Config{
		Addr:        "127.0.0.1:6005",
		DialTimeout: time.Second,
		CallTimeout: 3 * time.Second,
	}
}

// Client resolves definitions and documentation through the host
// editor's language server. The connection is dialed and initialized
// lazily on first use; the server may not be listening when the host
// starts.
type Client struct {
	cfg  Config
	log  *logger.Logger
	dial func(ctx context.Context) (net.Conn, error)

	mu     sync.Mutex
	tr     *Transport
	source func(path string) (string, bool)
	closed bool
}

// New creates a client. Nothing is dialed until the first lookup.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Null()
	}

	c := &Client{cfg: cfg, log: cfg.Logger}
	c.dial = func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", c.cfg.Addr)
	}
	return c
}

// SetSource installs the text provider consulted before disk when a
// document is announced to the server. The host supplies the widget's
// unsaved content here.
func (c *Client) SetSource(fn func(path string) (string, bool)) {
	c.mu.Lock()
	c.source = fn
	c.mu.Unlock()
}

// Connected reports whether a live server connection exists.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr != nil && !c.tr.IsClosed()
}

// Close shuts the client down. Later lookups fail with
// ErrNotConnected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.tr == nil {
		return nil
	}
	err := c.tr.Close()
	c.tr = nil
	return err
}

// Definition resolves the symbol at the given widget position to a
// file position. A result in the queried file returns the query path
// verbatim; a result under the project root keeps the query's path
// scheme. An empty file means no definition was found.
func (c *Client) Definition(ctx context.Context, path string, line, col int) (string, int, int, error) {
	if path == "" {
		return "", 0, 0, nil
	}
	tr, err := c.ensure(ctx)
	if err != nil {
		return "", 0, 0, err
	}

	abs := c.globalize(path)
	uri := uriFromPath(abs)
	c.openDocument(tr, path, uri)

	params := positionParams{
		TextDocument: textDocumentID{URI: uri},
		Position:     position{Line: line, Character: col},
	}
	var raw json.RawMessage
	if err := c.call(ctx, tr, "textDocument/definition", params, &raw); err != nil {
		return "", 0, 0, err
	}

	locs := decodeLocations(raw)
	if len(locs) == 0 {
		return "", 0, 0, nil
	}
	target := pathFromURI(locs[0].URI)
	start := locs[0].Range.Start
	if target == path || target == abs {
		return path, start.Line, start.Character, nil
	}
	if strings.HasPrefix(path, resPrefix) {
		if res, ok := c.localize(target); ok {
			target = res
		}
	}
	return target, start.Line, start.Character, nil
}

// Documentation resolves the symbol at the given widget position to a
// help topic via hover. An empty topic means the hover text had no
// recognizable declaration.
func (c *Client) Documentation(ctx context.Context, path string, line, col int, word string) (string, error) {
	if path == "" {
		return "", nil
	}
	tr, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}

	uri := uriFromPath(c.globalize(path))
	c.openDocument(tr, path, uri)

	params := positionParams{
		TextDocument: textDocumentID{URI: uri},
		Position:     position{Line: line, Character: col},
	}
	var raw json.RawMessage
	if err := c.call(ctx, tr, "textDocument/hover", params, &raw); err != nil {
		return "", err
	}
	content := hoverText(raw)
	if content == "" {
		return "", nil
	}
	return helpTopic(content, word), nil
}

// ensure returns the live transport, dialing and initializing the
// server on first use or after a lost connection.
func (c *Client) ensure(ctx context.Context) (*Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrNotConnected
	}
	if c.tr != nil && !c.tr.IsClosed() {
		return c.tr, nil
	}
	c.tr = nil

	dctx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	conn, err := c.dial(dctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.cfg.Addr, err)
	}

	tr := NewTransport(conn, conn, conn)
	tr.Start(context.Background())
	if err := c.initialize(ctx, tr); err != nil {
		tr.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	c.log.Debug("language server ready on %s", c.cfg.Addr)
	c.tr = tr
	return tr, nil
}

func (c *Client) initialize(ctx context.Context, tr *Transport) error {
	params := initializeParams{ProcessID: os.Getpid()}
	if c.cfg.Root != "" {
		params.RootURI = uriFromPath(c.cfg.Root)
	}
	var res json.RawMessage
	if err := c.call(ctx, tr, "initialize", params, &res); err != nil {
		return err
	}
	return tr.Notify("initialized", struct{}{})
}

// openDocument announces the document before a query. The editor's
// server usually has the file open on its own side already, so a
// failure only logs.
func (c *Client) openDocument(tr *Transport, path, uri string) {
	text, ok := c.documentText(path)
	if !ok {
		return
	}
	err := tr.Notify("textDocument/didOpen", didOpenParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "gdscript", Version: 1, Text: text},
	})
	if err != nil {
		c.log.Debug("didOpen %s: %v", path, err)
	}
}

func (c *Client) documentText(path string) (string, bool) {
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()

	if source != nil {
		if text, ok := source(path); ok {
			return text, true
		}
	}
	data, err := os.ReadFile(c.globalize(path))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (c *Client) call(ctx context.Context, tr *Transport, method string, params, result any) error {
	cctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	return tr.Call(cctx, method, params, result)
}

// globalize resolves a res:// resource path against the project root.
func (c *Client) globalize(path string) string {
	rel, ok := strings.CutPrefix(path, resPrefix)
	if !ok {
		return path
	}
	return filepath.Join(c.cfg.Root, filepath.FromSlash(rel))
}

// localize maps an absolute path under the project root back to a
// res:// resource path.
func (c *Client) localize(path string) (string, bool) {
	if strings.HasPrefix(path, resPrefix) {
		return path, true
	}
	if c.cfg.Root == "" || !filepath.IsAbs(path) {
		return "", false
	}
	rel, err := filepath.Rel(c.cfg.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return resPrefix + filepath.ToSlash(rel), true
}

// Wire shapes for the three requests the client issues.

type initializeParams struct {
	ProcessID    int      `json:"processId"`
	RootURI      string   `json:"rootUri,omitempty"`
	Capabilities struct{} `json:"capabilities"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type positionParams struct {
	TextDocument textDocumentID `json:"textDocument"`
	Position     position       `json:"position"`
}

type textDocumentID struct {
	URI string `json:"uri"`
}

// position is zero-based; character counts UTF-16 code units.
type position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type span struct {
	Start position `json:"start"`
	End   position `json:"end"`
}

type location struct {
	URI   string `json:"uri"`
	Range span   `json:"range"`
}

type locationLink struct {
	TargetURI            string `json:"targetUri"`
	TargetRange          span   `json:"targetRange"`
	TargetSelectionRange span   `json:"targetSelectionRange"`
}

// decodeLocations accepts the three shapes a definition result may
// take: a single location, an array of locations, or an array of
// location links.
func decodeLocations(raw json.RawMessage) []location {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var one location
	if err := json.Unmarshal(raw, &one); err == nil && one.URI != "" {
		return []location{one}
	}

	var many []location
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 && many[0].URI != "" {
		return many
	}

	var links []locationLink
	if err := json.Unmarshal(raw, &links); err == nil && len(links) > 0 && links[0].TargetURI != "" {
		locs := make([]location, len(links))
		for i, l := range links {
			r := l.TargetSelectionRange
			if r == (span{}) {
				r = l.TargetRange
			}
			locs[i] = location{URI: l.TargetURI, Range: r}
		}
		return locs
	}
	return nil
}

// hoverText flattens hover contents. Servers answer with markup
// content, a bare string, a marked string, or an array of those.
func hoverText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var h struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return ""
	}
	return markedText(h.Contents)
}

func markedText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var mc struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &mc); err == nil && mc.Value != "" {
		return mc.Value
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := markedText(p); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}

// helpTopic extracts a documentation topic from hover text. The server
// describes symbols with declaration lines; a Class.member shape in a
// var, const, func, or signal declaration names the topic directly.
// Bare func and signal declarations fall back to the defining script
// named in the hover body. An empty return means no declaration was
// recognized.
func helpTopic(content, word string) string {
	lines := strings.Split(content, "\n")

	for _, kw := range []string{"var ", "const "} {
		for _, line := range lines {
			if rest, ok := strings.CutPrefix(declLine(line), kw); ok {
				if topic := qualifiedName(rest); topic != "" {
					return topic
				}
			}
		}
	}

	sawDecl := false
	for _, kw := range []string{"func ", "signal "} {
		for _, line := range lines {
			rest, ok := strings.CutPrefix(declLine(line), kw)
			if !ok || !strings.Contains(rest, "(") {
				continue
			}
			sawDecl = true
			if topic := qualifiedName(rest); topic != "" {
				return topic
			}
		}
	}
	if sawDecl && word != "" {
		if class := definedInClass(lines); class != "" {
			return class + "." + word
		}
	}

	for _, line := range lines {
		if _, rest, ok := strings.Cut(line, "class "); ok {
			if name := identPrefix(rest); name != "" {
				return name
			}
		}
	}
	return ""
}

// declLine normalizes a hover line for declaration matching: markdown
// code fences and inline backticks drop, as does a static qualifier.
func declLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimSpace(strings.Trim(line, "`"))
	return strings.TrimPrefix(line, "static ")
}

// qualifiedName extracts "Class.member" from the head of a declaration
// remainder such as "CharacterBody2D.move_and_slide() -> bool".
func qualifiedName(s string) string {
	class, rest, ok := strings.Cut(s, ".")
	if !ok {
		return ""
	}
	c, m := identPrefix(class), identPrefix(rest)
	if c == "" || c != strings.TrimSpace(class) || m == "" {
		return ""
	}
	return c + "." + m
}

// identPrefix returns the leading identifier of s, empty when s does
// not start with one.
func identPrefix(s string) string {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return s[:i]
		}
	}
	return s
}

// definedInClass recovers the defining class from a "Defined in
// [script.gd](...)" link, turning the script's snake_case stem into
// its class name.
func definedInClass(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, "Defined in") {
			continue
		}
		open := strings.Index(line, "[")
		if open < 0 {
			continue
		}
		end := strings.Index(line[open:], "]")
		if end < 0 {
			continue
		}
		name := line[open+1 : open+end]
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		stem, ok := strings.CutSuffix(name, ".gd")
		if !ok {
			continue
		}
		if class := pascalCase(stem); class != "" {
			return class
		}
	}
	return ""
}

func pascalCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		r, size := utf8.DecodeRuneInString(part)
		if size == 0 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// uriFromPath converts an absolute path to a file URI.
func uriFromPath(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// pathFromURI converts a file URI back to a path. Non-file URIs pass
// through unchanged; the editor's own resource scheme is one.
func pathFromURI(uri string) string {
	if strings.HasPrefix(uri, resPrefix) {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	path := u.Path
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}
