// Package process manages the embedded engine child process: spawning
// with the embed flags, exit tracking, stderr capture, and supervised
// restart accounting.
//
// The engine runs headless and speaks msgpack-rpc over its stdio pipes;
// this package hands the pipes to the rpc layer and watches the process
// itself.
package process
