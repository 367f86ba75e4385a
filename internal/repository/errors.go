// Package repository implements the data access layer over MySQL.  It also
// defines error types that are reused across multiple repositories.  These
// sentinel values allow higher layers such as handlers to distinguish
// between different failure scenarios without parsing driver errors. For
// example, ErrForbidden indicates that the current user is not authorized
// to act on a resource owned by someone else, while ErrConflict signals a
// state transition that has already happened (a duplicate check-in, a
// second check-out).
package repository

import "errors"

// ErrNotFound is returned when the requested record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as checking in twice on the same date. Handlers
// should translate this into a 400 or 409 response.
var ErrConflict = errors.New("conflict")
