// Package nvimtest provides a scripted engine for tests. The fake
// speaks the msgpack-rpc wire protocol over in-memory pipes, answers
// requests from a handler table, and can push notifications, so client
// and bridge tests run against real frames without a real engine.
package nvimtest

import (
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Handler answers a single scripted request. A returned error becomes
// an engine error response.
type Handler func(params []any) (any, error)

// Call records one request or notification the fake received.
type Call struct {
	Method string
	Params []any
}

// Fake is the scripted engine. Wire it to a session with HostReader
// and HostWriter, script methods with Handle, then Start it.
type Fake struct {
	HostReader *io.PipeReader
	HostWriter *io.PipeWriter

	engineIn  *io.PipeReader
	engineOut *io.PipeWriter

	enc     *msgpack.Encoder
	dec     *msgpack.Decoder
	writeMu sync.Mutex

	mu        sync.Mutex
	handlers  map[string]Handler
	calls     []Call
	responses []Response

	done chan struct{}
}

// Response records the host's answer to an engine-initiated request.
type Response struct {
	ID     uint32
	Err    any
	Result any
}

// New builds a fake and the pipe ends the host side connects to.
func New() *Fake {
	hostRead, engineWrite := io.Pipe()
	engineRead, hostWrite := io.Pipe()

	enc := msgpack.NewEncoder(engineWrite)
	dec := msgpack.NewDecoder(engineRead)
	dec.UseLooseInterfaceDecoding(true)

	return &Fake{
		HostReader: hostRead,
		HostWriter: hostWrite,
		engineIn:   engineRead,
		engineOut:  engineWrite,
		enc:        enc,
		dec:        dec,
		handlers:   make(map[string]Handler),
		done:       make(chan struct{}),
	}
}

// Handle scripts a response for a request method. Unscripted requests
// get a nil result.
func (f *Fake) Handle(method string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

// HandleResult scripts a fixed result for a request method.
func (f *Fake) HandleResult(method string, result any) {
	f.Handle(method, func([]any) (any, error) { return result, nil })
}

// Start runs the read loop until the host side closes its pipe.
func (f *Fake) Start() {
	go f.loop()
}

// Close tears the pipes down.
func (f *Fake) Close() {
	f.HostWriter.Close()
	f.HostReader.Close()
	f.engineIn.Close()
	f.engineOut.Close()
	<-f.done
}

// Done is closed once the read loop exits.
func (f *Fake) Done() <-chan struct{} { return f.done }

func (f *Fake) loop() {
	defer close(f.done)
	for {
		n, err := f.dec.DecodeArrayLen()
		if err != nil {
			return
		}
		if n < 3 || n > 4 {
			return
		}
		kind, err := f.dec.DecodeInt()
		if err != nil {
			return
		}
		switch kind {
		case 0: // request
			id, err := f.dec.DecodeUint32()
			if err != nil {
				return
			}
			method, params, err := f.readMethodParams()
			if err != nil {
				return
			}
			f.record(method, params)
			f.respond(id, method, params)
		case 1: // response to an engine-initiated request
			id, err := f.dec.DecodeUint32()
			if err != nil {
				return
			}
			respErr, err := f.dec.DecodeInterfaceLoose()
			if err != nil {
				return
			}
			result, err := f.dec.DecodeInterfaceLoose()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.responses = append(f.responses, Response{ID: id, Err: respErr, Result: result})
			f.mu.Unlock()
		case 2: // notification
			method, params, err := f.readMethodParams()
			if err != nil {
				return
			}
			f.record(method, params)
		default:
			return
		}
	}
}

func (f *Fake) readMethodParams() (string, []any, error) {
	method, err := f.dec.DecodeString()
	if err != nil {
		return "", nil, err
	}
	raw, err := f.dec.DecodeInterfaceLoose()
	if err != nil {
		return "", nil, err
	}
	params, _ := raw.([]any)
	return method, params, nil
}

func (f *Fake) respond(id uint32, method string, params []any) {
	f.mu.Lock()
	h := f.handlers[method]
	f.mu.Unlock()

	var result any
	var herr error
	if h != nil {
		result, herr = h(params)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	f.enc.EncodeArrayLen(4)
	f.enc.EncodeInt(1)
	f.enc.EncodeUint32(id)
	if herr != nil {
		f.enc.Encode([]any{int64(0), herr.Error()})
		f.enc.Encode(nil)
	} else {
		f.enc.Encode(nil)
		f.enc.Encode(result)
	}
}

// Notify pushes a notification frame to the host.
func (f *Fake) Notify(method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := f.enc.EncodeInt(2); err != nil {
		return err
	}
	if err := f.enc.EncodeString(method); err != nil {
		return err
	}
	return f.enc.Encode(params)
}

// Request sends a request frame from the engine to the host, as the
// clipboard provider does. The response is left for the host's read
// loop; the fake does not wait for it.
func (f *Fake) Request(id uint32, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := f.enc.EncodeInt(0); err != nil {
		return err
	}
	if err := f.enc.EncodeUint32(id); err != nil {
		return err
	}
	if err := f.enc.EncodeString(method); err != nil {
		return err
	}
	return f.enc.Encode(params)
}

func (f *Fake) record(method string, params []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Params: params})
}

// Calls returns a copy of everything received so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf filters received calls by method.
func (f *Fake) CallsOf(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// WaitFor polls until at least n calls of method arrived or the
// timeout passes.
func (f *Fake) WaitFor(method string, n int, timeout time.Duration) []Call {
	deadline := time.Now().Add(timeout)
	for {
		calls := f.CallsOf(method)
		if len(calls) >= n {
			return calls
		}
		if time.Now().After(deadline) {
			return calls
		}
		time.Sleep(time.Millisecond)
	}
}

// ScriptHandshake answers the session-setup request a client makes on
// connect: api info carrying the given channel id and engine version.
func (f *Fake) ScriptHandshake(channel int64, major, minor, patch int) {
	f.HandleResult("nvim_get_api_info", []any{channel, map[string]any{
		"version": map[string]any{
			"major": int64(major),
			"minor": int64(minor),
			"patch": int64(patch),
		},
	}})
}

// WaitResponse polls until the host answered request id or the
// timeout passes.
func (f *Fake) WaitResponse(id uint32, timeout time.Duration) (Response, bool) {
	deadline := time.Now().Add(timeout)
	for {
		f.mu.Lock()
		for _, r := range f.responses {
			if r.ID == id {
				f.mu.Unlock()
				return r, true
			}
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			return Response{}, false
		}
		time.Sleep(time.Millisecond)
	}
}
