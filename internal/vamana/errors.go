package vamana

import (
	"errors"

	"github.com/xDarkicex/diskvec/internal/store"
)

// Core errors. The public package re-exports these; internal code wraps them
// with fmt.Errorf("...: %w", ...) so callers can branch with errors.Is.
var (
	ErrNotFound  = errors.New("index or row not found")
	ErrExists    = errors.New("index or id already exists")
	ErrInvalid   = errors.New("invalid argument")
	ErrDimension = errors.New("vector dimension mismatch")
	ErrVersion   = errors.New("index format version newer than supported")

	// ErrIO originates in the store layer, where the BLOB I/O happens.
	ErrIO = store.ErrIO
)
