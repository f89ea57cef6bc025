// Package ctxkey defines typed context keys used by middleware and handlers.
//
// Keys use an unexported type so they cannot collide with string keys set
// by third-party packages.
package ctxkey

type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyWriteAuthorized marks a request that presented a valid API key.
	KeyWriteAuthorized key = "write_authorized"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
