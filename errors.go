package livecache

import "github.com/boardkit/livecache/pkg/connection"

// Errors returned by client operations, re-exported for callers that do not
// import the connection package directly.
var (
	ErrNotAuthenticated = connection.ErrNotAuthenticated
	ErrNotFound         = connection.ErrNotFound
	ErrClosed           = connection.ErrClosed
)
