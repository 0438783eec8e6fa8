package lsp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected short-circuits calls after Close. A client is
	// never reused once shut down.
	ErrNotConnected = errors.New("lsp: not connected")

	// ErrShutdown fails calls in flight when the transport closes.
	ErrShutdown = errors.New("lsp: transport closed")

	// ErrMalformed marks a frame the transport could not parse. The
	// stream cannot be trusted past it.
	ErrMalformed = errors.New("lsp: malformed frame")
)

// JSON-RPC error codes the server may answer with.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// RPCError is an error object from a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("lsp: server error %d: %s", e.Code, e.Message)
}
