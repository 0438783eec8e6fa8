package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// NotificationHandler handles a server-initiated notification. Handlers
// run on the read loop and must not block.
type NotificationHandler func(method string, params json.RawMessage)

// Transport is a JSON-RPC 2.0 connection with Content-Length framing,
// the base protocol of the host's language server.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	// writeMu serializes frames on the wire. Held separately from mu so
	// a slow write never blocks response dispatch.
	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[int64]chan *reply
	handlers map[string]NotificationHandler

	nextID atomic.Int64
	closed atomic.Bool
	done   chan struct{}
}

type reply struct {
	result json.RawMessage
	err    error
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int64     `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// NewTransport creates a transport over the given streams. The closer,
// when non-nil, is closed together with the transport; pass the TCP
// connection itself.
func NewTransport(r io.Reader, w io.Writer, c io.Closer) *Transport {
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   c,
		pending:  make(map[int64]chan *reply),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins reading frames from the connection.
func (t *Transport) Start(ctx context.Context) {
	go t.readLoop(ctx)
}

// Close shuts the transport down and fails all in-flight calls.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	close(t.done)

	// Clear pending without closing the channels; waiting callers are
	// released through t.done instead.
	t.mu.Lock()
	t.pending = make(map[int64]chan *reply)
	t.mu.Unlock()

	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// IsClosed returns true once the transport has been shut down.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// Call sends a request and waits for the matching response.
func (t *Transport) Call(ctx context.Context, method string, params, result any) error {
	if t.closed.Load() {
		return ErrShutdown
	}

	id := t.nextID.Add(1)
	ch := make(chan *reply, 1)

	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	req := request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	if err := t.send(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrShutdown
	case res := <-ch:
		if res.err != nil {
			return res.err
		}
		if result != nil && len(res.result) > 0 {
			if err := json.Unmarshal(res.result, result); err != nil {
				return fmt.Errorf("decode %s result: %w", method, err)
			}
		}
		return nil
	}
}

// Notify sends a notification. No response is expected.
func (t *Transport) Notify(method string, params any) error {
	if t.closed.Load() {
		return ErrShutdown
	}
	return t.send(notification{JSONRPC: "2.0", Method: method, Params: params})
}

// OnNotification registers a handler for server notifications. The
// method "*" registers a fallback for methods without a handler of
// their own.
func (t *Transport) OnNotification(method string, handler NotificationHandler) {
	t.mu.Lock()
	t.handlers[method] = handler
	t.mu.Unlock()
}

func (t *Transport) send(msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := fmt.Fprintf(t.writer, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err = t.writer.Write(body)
	return err
}

// readLoop reads frames until the stream ends or the transport closes.
func (t *Transport) readLoop(ctx context.Context) {
	defer t.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		body, err := t.readMessage()
		if err != nil {
			// Any read failure loses the framing; the base protocol
			// has no resync point.
			return
		}

		t.dispatch(body)
	}
}

// readMessage reads one Content-Length framed body. Header names are
// matched case-insensitively; unknown headers are skipped.
func (t *Transport) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: header %q", ErrMalformed, line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: content length %q", ErrMalformed, value)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("%w: no content length", ErrMalformed)
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, err
	}
	return body, nil
}

// dispatch routes one frame. Responses wake their caller; notifications
// run their handler inline so arrival order is preserved; requests from
// the server are answered with a method-not-found error, since the
// client implements no server-initiated methods.
func (t *Transport) dispatch(body []byte) {
	var msg struct {
		ID     *int64          `json:"id"`
		Method string          `json:"method"`
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return
	}

	switch {
	case msg.ID != nil && msg.Method == "":
		t.handleResponse(*msg.ID, msg.Result, msg.Error)
	case msg.ID != nil:
		_ = t.send(response{
			JSONRPC: "2.0",
			ID:      *msg.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: "method not supported: " + msg.Method},
		})
	case msg.Method != "":
		t.handleNotification(msg.Method, msg.Params)
	}
}

func (t *Transport) handleResponse(id int64, result json.RawMessage, rpcErr *RPCError) {
	if t.closed.Load() {
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	res := &reply{result: result}
	if rpcErr != nil {
		res.err = rpcErr
	}
	select {
	case ch <- res:
	default:
	}
}

func (t *Transport) handleNotification(method string, params json.RawMessage) {
	t.mu.Lock()
	handler, ok := t.handlers[method]
	if !ok {
		handler, ok = t.handlers["*"]
	}
	t.mu.Unlock()

	if ok && handler != nil {
		handler(method, params)
	}
}
