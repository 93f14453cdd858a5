package diskvec

import (
	"errors"

	"github.com/xDarkicex/diskvec/internal/vamana"
)

// Core errors. Internal layers wrap these, so callers branch with errors.Is.
var (
	// ErrNotFound reports a missing index or row id.
	ErrNotFound = vamana.ErrNotFound

	// ErrExists reports an index or id that is already present.
	ErrExists = vamana.ErrExists

	// ErrInvalid reports a bad argument: non-positive k, an identifier
	// outside [A-Za-z_][A-Za-z0-9_]{0,63}, or corrupt metadata. A nil or
	// short vector reports ErrDimension instead.
	ErrInvalid = vamana.ErrInvalid

	// ErrDimension reports a vector whose length differs from the index
	// dimensions.
	ErrDimension = vamana.ErrDimension

	// ErrVersion reports an index written by a newer format than this
	// build supports.
	ErrVersion = vamana.ErrVersion

	// ErrIO reports a host BLOB I/O failure: open, seek, read or write on
	// an incremental handle.
	ErrIO = vamana.ErrIO

	// ErrClosed reports use of a closed handle.
	ErrClosed = errors.New("index is closed")
)
