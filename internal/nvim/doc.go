// Package nvim is the high-level client for the embedded engine. It
// layers typed API calls, the attach handshake, buffer and cursor
// helpers, and the notification handler over the rpc session.
//
// Every request carries a timeout. Interactive calls get a short
// budget so a stalled engine cannot freeze the host's frame thread;
// paths that can touch the filesystem (handshake, buffer switches,
// reloads) get an extended one. Timed-out calls are never retried;
// a retry would reorder the key stream.
//
// The notification handler runs on the session's read loop and only
// copies data into State under its mutex. Consumers drain State from
// their own turn; no business logic runs on the read loop.
package nvim
