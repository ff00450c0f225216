// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. For example, ErrNotFound indicates that a referenced
// record does not exist, while ErrEmailExists (declared next to the
// user repository) signals a uniqueness violation on the email column.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist or
// has been soft deleted. Services translate this into the domain
// not-found error.
var ErrNotFound = errors.New("record not found")
