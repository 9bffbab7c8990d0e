// Package repository defines error types that are reused across the
// persistence layer. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrStoreUnavailable indicates that the database could not
// be reached at all (handlers should translate it into a 503), while
// ErrRowNotFound signals that a lookup by name matched nothing.
package repository

import "errors"

// ErrStoreUnavailable is returned when the repository has no usable
// database handle. The server enters this degraded state when MySQL is
// unreachable at boot: health and static content keep working while
// every store operation fails fast with this error.
var ErrStoreUnavailable = errors.New("stock store unavailable")

// ErrRowNotFound is returned when a row lookup by name matches no
// record. Handlers should translate this into an HTTP 404 response.
var ErrRowNotFound = errors.New("stock row not found")
