// Package apperr defines error kinds shared across layers. Domain packages
// wrap these so the transport layer can map them to status codes.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid argument")
)
