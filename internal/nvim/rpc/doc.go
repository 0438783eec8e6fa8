// Package rpc implements the engine's msgpack-rpc wire protocol over a
// pair of byte streams, normally the stdin/stdout pipes of an embedded
// engine process.
//
// Frames are msgpack arrays: [0, id, method, params] for requests,
// [1, id, error, result] for responses, [2, method, params] for
// notifications. The engine sends notifications (redraw batches, buffer
// line events) and may also send its own requests back to us, for
// example when a clipboard provider is routed through the host.
//
// Notification handlers run synchronously on the read loop so that
// events are observed in arrival order. Handlers must queue work and
// return quickly.
package rpc
