package rpc

import (
	"bufio"
	"fmt"
	"io"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Message type tags from the msgpack-rpc framing rules.
const (
	typeRequest      = 0
	typeResponse     = 1
	typeNotification = 2
)

// Engine handle extension type ids, as published in the engine's API
// metadata.
const (
	extBuffer  = 0
	extWindow  = 1
	extTabpage = 2
)

// BufferID is an engine buffer handle.
type BufferID int64

// WindowID is an engine window handle.
type WindowID int64

// TabpageID is an engine tabpage handle.
type TabpageID int64

func init() {
	registerHandle(extBuffer, BufferID(0))
	registerHandle(extWindow, WindowID(0))
	registerHandle(extTabpage, TabpageID(0))
}

// registerHandle teaches the msgpack codec to map an extension type to
// an integer handle type. The payload of engine handles is a packed
// integer.
func registerHandle(id int8, proto any) {
	msgpack.RegisterExtEncoder(id, proto, func(_ *msgpack.Encoder, v reflect.Value) ([]byte, error) {
		return msgpack.Marshal(v.Int())
	})
	msgpack.RegisterExtDecoder(id, proto, func(d *msgpack.Decoder, v reflect.Value, _ int) error {
		n, err := d.DecodeInt64()
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil
	})
}

// message is a single decoded frame.
type message struct {
	kind   int
	id     uint32
	method string
	params []any
	err    error
	result any
}

// codec reads and writes msgpack-rpc frames. Writes must be serialized
// by the caller.
type codec struct {
	bw  *bufio.Writer
	enc *msgpack.Encoder
	dec *msgpack.Decoder
}

func newCodec(r io.Reader, w io.Writer) *codec {
	bw := bufio.NewWriter(w)
	return &codec{
		bw:  bw,
		enc: msgpack.NewEncoder(bw),
		dec: msgpack.NewDecoder(bufio.NewReaderSize(r, 64*1024)),
	}
}

func (c *codec) writeRequest(id uint32, method string, params []any) error {
	if err := c.enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := c.enc.EncodeInt(typeRequest); err != nil {
		return err
	}
	if err := c.enc.EncodeUint32(id); err != nil {
		return err
	}
	if err := c.enc.EncodeString(method); err != nil {
		return err
	}
	if err := c.writeParams(params); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *codec) writeResponse(id uint32, respErr any, result any) error {
	if err := c.enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := c.enc.EncodeInt(typeResponse); err != nil {
		return err
	}
	if err := c.enc.EncodeUint32(id); err != nil {
		return err
	}
	if err := c.enc.Encode(respErr); err != nil {
		return err
	}
	if err := c.enc.Encode(result); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *codec) writeNotification(method string, params []any) error {
	if err := c.enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := c.enc.EncodeInt(typeNotification); err != nil {
		return err
	}
	if err := c.enc.EncodeString(method); err != nil {
		return err
	}
	if err := c.writeParams(params); err != nil {
		return err
	}
	return c.bw.Flush()
}

// writeParams encodes the params array. A nil slice still encodes as an
// empty array; the engine rejects nil params.
func (c *codec) writeParams(params []any) error {
	if params == nil {
		params = []any{}
	}
	return c.enc.Encode(params)
}

// readMessage decodes the next frame. io.EOF propagates unchanged so a
// clean engine exit is distinguishable from a protocol error.
func (c *codec) readMessage() (*message, error) {
	n, err := c.dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	if n < 3 || n > 4 {
		return nil, fmt.Errorf("%w: array length %d", ErrMalformed, n)
	}

	kind, err := c.dec.DecodeInt()
	if err != nil {
		return nil, err
	}

	switch kind {
	case typeRequest:
		if n != 4 {
			return nil, fmt.Errorf("%w: request with %d elements", ErrMalformed, n)
		}
		id, err := c.dec.DecodeUint32()
		if err != nil {
			return nil, err
		}
		method, err := c.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		params, err := c.readArray()
		if err != nil {
			return nil, err
		}
		return &message{kind: typeRequest, id: id, method: method, params: params}, nil

	case typeResponse:
		if n != 4 {
			return nil, fmt.Errorf("%w: response with %d elements", ErrMalformed, n)
		}
		id, err := c.dec.DecodeUint32()
		if err != nil {
			return nil, err
		}
		errVal, err := c.dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		result, err := c.dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		return &message{kind: typeResponse, id: id, err: decodeEngineError(errVal), result: result}, nil

	case typeNotification:
		if n != 3 {
			return nil, fmt.Errorf("%w: notification with %d elements", ErrMalformed, n)
		}
		method, err := c.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		params, err := c.readArray()
		if err != nil {
			return nil, err
		}
		return &message{kind: typeNotification, method: method, params: params}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %d", ErrMalformed, kind)
	}
}

func (c *codec) readArray() ([]any, error) {
	n, err := c.dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]any, n)
	for i := range out {
		v, err := c.dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeEngineError turns the error slot of a response frame into an
// error value. The engine sends [code, message] pairs.
func decodeEngineError(v any) error {
	if v == nil {
		return nil
	}
	switch e := v.(type) {
	case []any:
		ee := &EngineError{}
		if len(e) >= 1 {
			ee.Code, _ = AsInt(e[0])
		}
		if len(e) >= 2 {
			ee.Message, _ = AsString(e[1])
		}
		if ee.Message == "" {
			ee.Message = fmt.Sprintf("%v", v)
		}
		return ee
	case string:
		return &EngineError{Message: e}
	default:
		return &EngineError{Message: fmt.Sprintf("%v", v)}
	}
}
