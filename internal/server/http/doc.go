// Package httpserver exposes the chat delivery engine over HTTP: an SSE
// stream endpoint, a WebSocket mirror of it, a small control API for
// publishing messages, and a mock OAuth token endpoint backing the auth gate.
package httpserver
