// Package stream implements the delivery engine: resumable cursors and the
// per-attach polling sessions that turn the chat log's current and future
// contents into bounded, cancellable event streams.
package stream
