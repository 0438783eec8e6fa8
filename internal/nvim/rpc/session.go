package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// NotificationHandler handles an incoming notification. Handlers run on
// the read loop and must not block.
type NotificationHandler func(method string, params []any)

// RequestHandler answers a request initiated by the engine. The return
// value is sent back as the result; a non-nil error is sent in the
// error slot.
type RequestHandler func(method string, params []any) (any, error)

// Session is a msgpack-rpc connection to the engine.
type Session struct {
	codec  *codec
	closer io.Closer

	// writeMu serializes frames on the wire. Held separately from mu so
	// a slow write never blocks response dispatch.
	writeMu sync.Mutex

	mu        sync.Mutex
	pending   map[uint32]chan *callResult
	handlers  map[string]NotificationHandler
	onRequest RequestHandler

	nextID atomic.Uint32
	closed atomic.Bool
	done   chan struct{}
}

type callResult struct {
	result any
	err    error
}

// NewSession creates a session over the given streams. The closer,
// when non-nil, is closed together with the session; pass the engine's
// stdin pipe so the engine sees EOF on shutdown.
func NewSession(r io.Reader, w io.Writer, c io.Closer) *Session {
	return &Session{
		codec:    newCodec(r, w),
		closer:   c,
		pending:  make(map[uint32]chan *callResult),
		handlers: make(map[string]NotificationHandler),
		done:     make(chan struct{}),
	}
}

// Start begins reading frames from the connection.
func (s *Session) Start(ctx context.Context) {
	go s.readLoop(ctx)
}

// Close shuts the session down and fails all in-flight calls.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	// Clear pending without closing the channels; waiting callers are
	// released through s.done instead.
	s.mu.Lock()
	s.pending = make(map[uint32]chan *callResult)
	s.mu.Unlock()

	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// IsClosed returns true once the session has been shut down.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Call sends a request and waits for the matching response. A deadline
// exceeded on ctx is reported as ErrTimeout so callers can count it
// toward the recovery threshold.
func (s *Session) Call(ctx context.Context, method string, params ...any) (any, error) {
	if s.closed.Load() {
		return nil, ErrShutdown
	}

	id := s.nextID.Add(1)
	ch := make(chan *callResult, 1)

	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := s.sendRequest(id, method, params); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, method)
		}
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrShutdown
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.result, nil
	}
}

// Notify sends a notification. No response is expected.
func (s *Session) Notify(method string, params ...any) error {
	if s.closed.Load() {
		return ErrShutdown
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.writeNotification(method, params)
}

// OnNotification registers a handler for engine notifications. The
// method "*" registers a fallback for methods without a handler of
// their own.
func (s *Session) OnNotification(method string, handler NotificationHandler) {
	s.mu.Lock()
	s.handlers[method] = handler
	s.mu.Unlock()
}

// OnRequest registers the handler for requests initiated by the engine,
// such as clipboard provider callbacks. Only one handler is held; the
// last registration wins.
func (s *Session) OnRequest(handler RequestHandler) {
	s.mu.Lock()
	s.onRequest = handler
	s.mu.Unlock()
}

func (s *Session) sendRequest(id uint32, method string, params []any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.writeRequest(id, method, params)
}

func (s *Session) sendResponse(id uint32, respErr any, result any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.writeResponse(id, respErr, result)
}

// readLoop reads frames until the stream ends or the session closes.
func (s *Session) readLoop(ctx context.Context) {
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		msg, err := s.codec.readMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			if errors.Is(err, ErrMalformed) {
				// Frame-level desync; the stream cannot be trusted
				// past this point.
				return
			}
			continue
		}

		s.dispatch(msg)
	}
}

// dispatch routes one frame. Responses wake their caller; notifications
// run their handler inline so arrival order is preserved; requests are
// answered on a separate goroutine since handlers may take time.
func (s *Session) dispatch(msg *message) {
	switch msg.kind {
	case typeResponse:
		s.handleResponse(msg)
	case typeNotification:
		s.handleNotification(msg)
	case typeRequest:
		go s.handleRequest(msg)
	}
}

func (s *Session) handleResponse(msg *message) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	ch, ok := s.pending[msg.id]
	if ok {
		delete(s.pending, msg.id)
	}
	s.mu.Unlock()

	if ok {
		select {
		case ch <- &callResult{result: msg.result, err: msg.err}:
		default:
		}
	}
}

func (s *Session) handleNotification(msg *message) {
	s.mu.Lock()
	handler, ok := s.handlers[msg.method]
	if !ok {
		handler, ok = s.handlers["*"]
	}
	s.mu.Unlock()

	if ok && handler != nil {
		handler(msg.method, msg.params)
	}
}

func (s *Session) handleRequest(msg *message) {
	s.mu.Lock()
	handler := s.onRequest
	s.mu.Unlock()

	if handler == nil {
		_ = s.sendResponse(msg.id, []any{int64(0), "no request handler"}, nil)
		return
	}

	result, err := handler(msg.method, msg.params)
	if err != nil {
		_ = s.sendResponse(msg.id, []any{int64(0), err.Error()}, nil)
		return
	}
	_ = s.sendResponse(msg.id, nil, result)
}
