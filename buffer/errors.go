package buffer

import "errors"

// Sentinel errors returned by construction-time operations.
var (
	// ErrConfiguration reports an invalid Buffer configuration such as a
	// zero or negative capacity. It is surfaced by New and is fatal to the
	// instance being built.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrMissingTransform reports a channel whose input type cannot be
	// converted to its output type without a caller-supplied Transform.
	// It is a contract violation surfaced by Attach, never at runtime.
	ErrMissingTransform = errors.New("transform function required")

	// ErrSealed reports an Attach on a Buffer that has already started
	// accepting data. The channel set is fixed once the buffer is in use.
	ErrSealed = errors.New("buffer is sealed")
)
