// Package apperr declares the error kinds shared by every domain package.
// Domain sentinels wrap one of these so the HTTP layer can map them to a status.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
)
