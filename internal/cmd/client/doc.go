// Package client contains Cobra CLI commands for the tern chat server.
//
// The CLI talks to the tern HTTP API to publish and stream chat messages
// from a terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080, overridable with TERN_HTTP.
//
// Usage
//
//	tern chat publish --channel demo --author-name Alice --text "hello"
//
//	# Stream a channel's live feed over SSE; resume from a saved token
//	tern chat stream --channel demo
//	tern chat stream --channel demo --page-token CURSOR --filter 'verified == true'
//
//	tern chat generate --channel demo --count 10
//
//	tern channels list
//
//	# Mint and refresh mock OAuth tokens for the auth gate
//	tern token create --scope chat.readonly --ttl-secs 3600
//	tern token refresh --refresh-token RT
//
// Notes
//
//   - stream consumes the server's SSE endpoint and prints one JSON event
//     per line. Heartbeats carry a null message with the resume token.
//   - publish and generate use the control API; they require no credential
//     even when streaming is gated.
package client
