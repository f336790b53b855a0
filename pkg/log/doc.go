// Package log provides Tern's structured logging facade.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the standard
// library's slog via a bridge handler that routes records through the
// package's formatter and output pipeline, so output stays consistent across
// the codebase while slog-compatible tooling keeps working.
package log
